package assistantRepository

import (
	"VistaVoice/internal/entity"
	contextPkg "VistaVoice/pkg/context"
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type FeedEventDB struct {
	ID          sql.NullString `db:"id"`
	FeedType    sql.NullString `db:"feed_type"`
	Title       sql.NullString `db:"title"`
	Description sql.NullString `db:"description"`
	SessionID   sql.NullString `db:"session_id"`
	UserType    sql.NullString `db:"user_type"`
	PageContext sql.NullString `db:"page_context"`
	Icon        sql.NullString `db:"icon"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *feedRepository) CreateFeedEvent(ctx context.Context, event entity.FeedEvent) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":           event.ID,
		"feed_type":    event.FeedType,
		"title":        event.Title,
		"description":  event.Description,
		"session_id":   event.SessionID,
		"user_type":    event.UserType,
		"page_context": event.PageContext,
		"icon":         event.Icon,
		"created_at":   event.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateFeedEvent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateFeedEvent named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating feed event")
		return err
	}

	return nil
}

func (r *feedRepository) GetRecentFeed(ctx context.Context, limit int) ([]entity.FeedEvent, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var eventsDB []FeedEventDB

	argsKV := map[string]interface{}{
		"limit": limit,
	}

	query, args, err := sqlx.Named(queryGetRecentFeed, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecentFeed named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &eventsDB, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecentFeed execution err")
		return nil, err
	}

	events := make([]entity.FeedEvent, 0, len(eventsDB))
	for _, e := range eventsDB {
		events = append(events, r.makeFeedEvent(e))
	}

	return events, nil
}

func (r *feedRepository) CountFeedEvents(ctx context.Context) (int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var count int

	query := r.q.Rebind(queryCountFeedEvents)
	if err := r.q.QueryRowxContext(ctx, query).Scan(&count); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountFeedEvents execution err")
		return 0, err
	}

	return count, nil
}

func (r *feedRepository) makeFeedEvent(eventDB FeedEventDB) entity.FeedEvent {
	return entity.FeedEvent{
		ID:          eventDB.ID.String,
		FeedType:    eventDB.FeedType.String,
		Title:       eventDB.Title.String,
		Description: eventDB.Description.String,
		SessionID:   eventDB.SessionID.String,
		UserType:    eventDB.UserType.String,
		PageContext: eventDB.PageContext.String,
		Icon:        eventDB.Icon.String,
		CreatedAt:   eventDB.CreatedAt,
	}
}
