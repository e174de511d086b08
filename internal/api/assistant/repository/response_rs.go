package assistantRepository

import (
	"VistaVoice/internal/api/assistant"
	"VistaVoice/internal/entity"
	contextPkg "VistaVoice/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type TTSResponseDB struct {
	ID            sql.NullString  `db:"id"`
	TriggerType   sql.NullString  `db:"trigger_type"`
	TriggerValue  sql.NullString  `db:"trigger_value"`
	UserType      sql.NullString  `db:"user_type"`
	ResponseText  sql.NullString  `db:"response_text"`
	ResponseTone  sql.NullString  `db:"response_tone"`
	SpeakingSpeed sql.NullFloat64 `db:"speaking_speed"`
	Priority      sql.NullInt64   `db:"priority"`
	IsActive      sql.NullBool    `db:"is_active"`
	TimesUsed     sql.NullInt64   `db:"times_used"`
	LastUsedAt    sql.NullTime    `db:"last_used_at"`
	CreatedAt     time.Time       `db:"created_at"`
}

// GetResponse picks the highest-priority active catalog entry for the
// trigger, preferring an exact user-type match over the 'any' wildcard.
func (r *responseRepository) GetResponse(ctx context.Context, triggerType, triggerValue, userType string) (entity.TTSResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var responseDB TTSResponseDB

	argsKV := map[string]interface{}{
		"trigger_type":  triggerType,
		"trigger_value": triggerValue,
		"user_type":     userType,
	}

	query, args, err := sqlx.Named(queryGetResponse, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetResponse named query preparation err")
		return entity.TTSResponse{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&responseDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.TTSResponse{}, assistant.ErrResponseNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetResponse execution err")
		return entity.TTSResponse{}, err
	}

	return r.makeTTSResponse(responseDB), nil
}

func (r *responseRepository) IncrementUsage(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":           id,
		"last_used_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryIncrementResponseUsage, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("IncrementUsage named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("IncrementUsage execution err")
		return err
	}

	return nil
}

func (r *responseRepository) ListResponses(ctx context.Context) ([]entity.TTSResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var responsesDB []TTSResponseDB

	query := r.q.Rebind(queryListResponses)
	if err := r.q.SelectContext(ctx, &responsesDB, query); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListResponses execution err")
		return nil, err
	}

	responses := make([]entity.TTSResponse, 0, len(responsesDB))
	for _, resp := range responsesDB {
		responses = append(responses, r.makeTTSResponse(resp))
	}

	return responses, nil
}

func (r *responseRepository) CreateResponse(ctx context.Context, resp entity.TTSResponse) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":             resp.ID,
		"trigger_type":   resp.TriggerType,
		"trigger_value":  resp.TriggerValue,
		"user_type":      resp.UserType,
		"response_text":  resp.ResponseText,
		"response_tone":  resp.ResponseTone,
		"speaking_speed": resp.SpeakingSpeed,
		"priority":       resp.Priority,
		"is_active":      resp.IsActive,
		"times_used":     resp.TimesUsed,
		"created_at":     resp.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateResponse, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateResponse named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating catalog response")
		return err
	}

	return nil
}

func (r *responseRepository) makeTTSResponse(responseDB TTSResponseDB) entity.TTSResponse {
	return entity.TTSResponse{
		ID:            responseDB.ID.String,
		TriggerType:   responseDB.TriggerType.String,
		TriggerValue:  responseDB.TriggerValue.String,
		UserType:      responseDB.UserType.String,
		ResponseText:  responseDB.ResponseText.String,
		ResponseTone:  responseDB.ResponseTone.String,
		SpeakingSpeed: responseDB.SpeakingSpeed.Float64,
		Priority:      int(responseDB.Priority.Int64),
		IsActive:      responseDB.IsActive.Bool,
		TimesUsed:     int(responseDB.TimesUsed.Int64),
		LastUsedAt:    responseDB.LastUsedAt.Time,
		CreatedAt:     responseDB.CreatedAt,
	}
}
