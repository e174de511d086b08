package assistantRepository

import (
	"VistaVoice/internal/api/assistant"
	"VistaVoice/internal/entity"
	contextPkg "VistaVoice/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type LearnedPatternDB struct {
	ID               sql.NullString `db:"id"`
	PatternType      sql.NullString `db:"pattern_type"`
	PatternCategory  sql.NullString `db:"pattern_category"`
	PatternName      sql.NullString `db:"pattern_name"`
	TriggerPhrases   sql.NullString `db:"trigger_phrases"`
	OccurrenceCount  sql.NullInt64  `db:"occurrence_count"`
	FirstSeenBy      sql.NullString `db:"first_seen_by"`
	LastReinforcedBy sql.NullString `db:"last_reinforced_by"`
	LastUsedAt       time.Time      `db:"last_used_at"`
	CreatedAt        time.Time      `db:"created_at"`
}

func (r *patternRepository) GetPatternByTrigger(ctx context.Context, phrase string) (entity.LearnedPattern, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var patternDB LearnedPatternDB

	argsKV := map[string]interface{}{
		"phrase": phrase,
	}

	query, args, err := sqlx.Named(queryGetPatternByTrigger, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPatternByTrigger named query preparation err")
		return entity.LearnedPattern{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&patternDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.LearnedPattern{}, assistant.ErrPatternNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPatternByTrigger execution err")
		return entity.LearnedPattern{}, err
	}

	return r.makeLearnedPattern(patternDB), nil
}

func (r *patternRepository) CreatePattern(ctx context.Context, pattern entity.LearnedPattern) error {
	requestID := contextPkg.GetRequestID(ctx)

	phrasesJSON, err := json.Marshal(pattern.TriggerPhrases)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal trigger phrases")
		return err
	}

	argsKV := map[string]interface{}{
		"id":                 pattern.ID,
		"pattern_type":       pattern.PatternType,
		"pattern_category":   pattern.PatternCategory,
		"pattern_name":       pattern.PatternName,
		"trigger_phrases":    string(phrasesJSON),
		"occurrence_count":   pattern.OccurrenceCount,
		"first_seen_by":      pattern.FirstSeenBy,
		"last_reinforced_by": pattern.LastReinforcedBy,
		"last_used_at":       pattern.LastUsedAt,
		"created_at":         pattern.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreatePattern, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreatePattern named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating learned pattern")
		return err
	}

	return nil
}

func (r *patternRepository) ReinforcePattern(ctx context.Context, id string, userType string) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":           id,
		"user_type":    userType,
		"last_used_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryReinforcePattern, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReinforcePattern named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReinforcePattern execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return assistant.ErrPatternNotFound
	}

	return nil
}

func (r *patternRepository) GetTopPatterns(ctx context.Context, limit int) ([]entity.LearnedPattern, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var patternsDB []LearnedPatternDB

	argsKV := map[string]interface{}{
		"limit": limit,
	}

	query, args, err := sqlx.Named(queryGetTopPatterns, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTopPatterns named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &patternsDB, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTopPatterns execution err")
		return nil, err
	}

	patterns := make([]entity.LearnedPattern, 0, len(patternsDB))
	for _, p := range patternsDB {
		patterns = append(patterns, r.makeLearnedPattern(p))
	}

	return patterns, nil
}

func (r *patternRepository) CountPatterns(ctx context.Context) (int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var count int

	query := r.q.Rebind(queryCountPatterns)
	if err := r.q.QueryRowxContext(ctx, query).Scan(&count); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountPatterns execution err")
		return 0, err
	}

	return count, nil
}

func (r *patternRepository) makeLearnedPattern(patternDB LearnedPatternDB) entity.LearnedPattern {
	var phrases []string
	if patternDB.TriggerPhrases.Valid && patternDB.TriggerPhrases.String != "" {
		json.Unmarshal([]byte(patternDB.TriggerPhrases.String), &phrases)
	}

	return entity.LearnedPattern{
		ID:               patternDB.ID.String,
		PatternType:      patternDB.PatternType.String,
		PatternCategory:  patternDB.PatternCategory.String,
		PatternName:      patternDB.PatternName.String,
		TriggerPhrases:   phrases,
		OccurrenceCount:  int(patternDB.OccurrenceCount.Int64),
		FirstSeenBy:      patternDB.FirstSeenBy.String,
		LastReinforcedBy: patternDB.LastReinforcedBy.String,
		LastUsedAt:       patternDB.LastUsedAt,
		CreatedAt:        patternDB.CreatedAt,
	}
}
