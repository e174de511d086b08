package assistant

import "VistaVoice/pkg/response"

var (
	ErrSessionNotFound   = response.NewError(404, "assistant session not found")
	ErrPatternNotFound   = response.NewError(404, "learned pattern not found")
	ErrResponseNotFound  = response.NewError(404, "response catalog entry not found")
	ErrInvalidUserType   = response.NewError(400, "invalid user type")
	ErrEmptyUtterance    = response.NewError(400, "utterance text is empty")
	ErrMicrophoneHeld    = response.NewError(409, "microphone held by another screen")
	ErrStreamUnavailable = response.NewError(503, "voice stream unavailable")
)
