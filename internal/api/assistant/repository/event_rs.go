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

type VoiceEventDB struct {
	ID           sql.NullString `db:"id"`
	SessionID    sql.NullString `db:"session_id"`
	UserType     sql.NullString `db:"user_type"`
	Transcript   sql.NullString `db:"transcript"`
	Intent       sql.NullString `db:"intent"`
	Sentiment    sql.NullString `db:"sentiment"`
	Emotion      sql.NullString `db:"emotion"`
	ResponseText sql.NullString `db:"response_text"`
	PageContext  sql.NullString `db:"page_context"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r *eventRepository) CreateVoiceEvent(ctx context.Context, event entity.VoiceEvent) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":            event.ID,
		"session_id":    event.SessionID,
		"user_type":     event.UserType,
		"transcript":    event.Transcript,
		"intent":        event.Intent,
		"sentiment":     event.Sentiment,
		"emotion":       event.Emotion,
		"response_text": event.ResponseText,
		"page_context":  event.PageContext,
		"created_at":    event.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateVoiceEvent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateVoiceEvent named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when recording voice event")
		return err
	}

	return nil
}

func (r *eventRepository) GetVoiceEventsByUserType(ctx context.Context, userType string, limit, offset int) ([]entity.VoiceEvent, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var eventsDB []VoiceEventDB

	argsKV := map[string]interface{}{
		"user_type": userType,
		"limit":     limit,
		"offset":    offset,
	}

	query, args, err := sqlx.Named(queryGetVoiceEventsByUserType, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetVoiceEventsByUserType named query preparation err")
		return nil, 0, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &eventsDB, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetVoiceEventsByUserType execution err")
		return nil, 0, err
	}

	countQuery, countArgs, err := sqlx.Named(queryCountVoiceEventsByUserType, argsKV)
	if err != nil {
		return nil, 0, err
	}
	countQuery = r.q.Rebind(countQuery)

	var total int
	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountVoiceEventsByUserType execution err")
		return nil, 0, err
	}

	events := make([]entity.VoiceEvent, 0, len(eventsDB))
	for _, e := range eventsDB {
		events = append(events, r.makeVoiceEvent(e))
	}

	return events, total, nil
}

func (r *eventRepository) CountVoiceEvents(ctx context.Context) (int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var count int

	query := r.q.Rebind(queryCountVoiceEvents)
	if err := r.q.QueryRowxContext(ctx, query).Scan(&count); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountVoiceEvents execution err")
		return 0, err
	}

	return count, nil
}

func (r *eventRepository) GetSentimentCounts(ctx context.Context) (map[string]int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	type sentimentRow struct {
		Sentiment sql.NullString `db:"sentiment"`
		Total     int            `db:"total"`
	}

	var rows []sentimentRow
	query := r.q.Rebind(querySentimentCounts)
	if err := r.q.SelectContext(ctx, &rows, query); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSentimentCounts execution err")
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Sentiment.String] = row.Total
	}

	return counts, nil
}

func (r *eventRepository) makeVoiceEvent(eventDB VoiceEventDB) entity.VoiceEvent {
	return entity.VoiceEvent{
		ID:           eventDB.ID.String,
		SessionID:    eventDB.SessionID.String,
		UserType:     eventDB.UserType.String,
		Transcript:   eventDB.Transcript.String,
		Intent:       eventDB.Intent.String,
		Sentiment:    eventDB.Sentiment.String,
		Emotion:      eventDB.Emotion.String,
		ResponseText: eventDB.ResponseText.String,
		PageContext:  eventDB.PageContext.String,
		CreatedAt:    eventDB.CreatedAt,
	}
}
