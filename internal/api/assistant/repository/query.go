package assistantRepository

const (
	queryGetPatternByTrigger = `
		SELECT
			id, pattern_type, pattern_category, pattern_name,
			trigger_phrases, occurrence_count, first_seen_by,
			last_reinforced_by, last_used_at, created_at
		FROM learned_patterns
		WHERE trigger_phrases @> jsonb_build_array(CAST(:phrase AS TEXT))
		ORDER BY occurrence_count DESC
		LIMIT 1
	`

	queryCreatePattern = `
		INSERT INTO learned_patterns (
			id, pattern_type, pattern_category, pattern_name,
			trigger_phrases, occurrence_count, first_seen_by,
			last_reinforced_by, last_used_at, created_at
		) VALUES (
			:id, :pattern_type, :pattern_category, :pattern_name,
			:trigger_phrases, :occurrence_count, :first_seen_by,
			:last_reinforced_by, :last_used_at, :created_at
		)
	`

	queryReinforcePattern = `
		UPDATE learned_patterns
		SET
			occurrence_count = occurrence_count + 1,
			last_reinforced_by = :user_type,
			last_used_at = :last_used_at
		WHERE id = :id
	`

	queryGetTopPatterns = `
		SELECT
			id, pattern_type, pattern_category, pattern_name,
			trigger_phrases, occurrence_count, first_seen_by,
			last_reinforced_by, last_used_at, created_at
		FROM learned_patterns
		ORDER BY occurrence_count DESC, last_used_at DESC
		LIMIT :limit
	`

	queryCountPatterns = `
		SELECT COUNT(*)
		FROM learned_patterns
	`

	queryGetResponse = `
		SELECT
			id, trigger_type, trigger_value, user_type,
			response_text, response_tone, speaking_speed,
			priority, is_active, times_used, last_used_at, created_at
		FROM tts_responses
		WHERE trigger_type = :trigger_type
		AND trigger_value = :trigger_value
		AND user_type IN (:user_type, 'any')
		AND is_active = true
		ORDER BY priority DESC, (user_type = :user_type) DESC
		LIMIT 1
	`

	queryIncrementResponseUsage = `
		UPDATE tts_responses
		SET
			times_used = times_used + 1,
			last_used_at = :last_used_at
		WHERE id = :id
	`

	queryListResponses = `
		SELECT
			id, trigger_type, trigger_value, user_type,
			response_text, response_tone, speaking_speed,
			priority, is_active, times_used, last_used_at, created_at
		FROM tts_responses
		ORDER BY trigger_type, trigger_value, priority DESC
	`

	queryCreateResponse = `
		INSERT INTO tts_responses (
			id, trigger_type, trigger_value, user_type,
			response_text, response_tone, speaking_speed,
			priority, is_active, times_used, created_at
		) VALUES (
			:id, :trigger_type, :trigger_value, :user_type,
			:response_text, :response_tone, :speaking_speed,
			:priority, :is_active, :times_used, :created_at
		)
	`

	queryCreateFeedEvent = `
		INSERT INTO activity_feed (
			id, feed_type, title, description, session_id,
			user_type, page_context, icon, created_at
		) VALUES (
			:id, :feed_type, :title, :description, :session_id,
			:user_type, :page_context, :icon, :created_at
		)
	`

	queryGetRecentFeed = `
		SELECT
			id, feed_type, title, description, session_id,
			user_type, page_context, icon, created_at
		FROM activity_feed
		ORDER BY created_at DESC
		LIMIT :limit
	`

	queryCountFeedEvents = `
		SELECT COUNT(*)
		FROM activity_feed
	`

	queryCreateVoiceEvent = `
		INSERT INTO voice_events (
			id, session_id, user_type, transcript, intent,
			sentiment, emotion, response_text, page_context, created_at
		) VALUES (
			:id, :session_id, :user_type, :transcript, :intent,
			:sentiment, :emotion, :response_text, :page_context, :created_at
		)
	`

	queryGetVoiceEventsByUserType = `
		SELECT
			id, session_id, user_type, transcript, intent,
			sentiment, emotion, response_text, page_context, created_at
		FROM voice_events
		WHERE user_type = :user_type
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountVoiceEventsByUserType = `
		SELECT COUNT(*)
		FROM voice_events
		WHERE user_type = :user_type
	`

	queryCountVoiceEvents = `
		SELECT COUNT(*)
		FROM voice_events
	`

	querySentimentCounts = `
		SELECT sentiment, COUNT(*) AS total
		FROM voice_events
		GROUP BY sentiment
	`
)
