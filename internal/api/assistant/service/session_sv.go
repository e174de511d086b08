package assistantService

import (
	"VistaVoice/internal/api/assistant"
	contextPkg "VistaVoice/pkg/context"
	jwtPkg "VistaVoice/pkg/jwt"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// NewSession issues a session id, marks it live in redis, and signs the
// access token the widget presents on the guarded endpoints. The nav
// stack for the session is created lazily on the first command.
func (s *assistantService) NewSession(ctx context.Context, userType string) (*assistant.SessionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	sessionID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate session id")
		return nil, err
	}

	if err := s.redisServer.TouchSession(ctx, sessionID, sessionTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Failed to mark session live")
	}

	token, expiresAt, err := jwtPkg.Sign(map[string]interface{}{
		"id":        sessionID,
		"user_type": userType,
	}, sessionTTL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Failed to sign session token")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sessionID,
		"user_type":  userType,
	}).Info("Assistant session started")

	return &assistant.SessionResponse{
		SessionID:   sessionID,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// EndSession drops the session's navigation stack and its redis liveness
// key. Ending a session that never issued a command is a no-op.
func (s *assistantService) EndSession(ctx context.Context, sessionID string) error {
	requestID := contextPkg.GetRequestID(ctx)

	s.navigator.forget(sessionID)

	if err := s.redisServer.DropSession(ctx, sessionID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Failed to drop session key")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	}).Info("Assistant session ended")

	return nil
}
