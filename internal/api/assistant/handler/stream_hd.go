package assistantHandler

import (
	"VistaVoice/internal/api/assistant"
	"VistaVoice/internal/voice"
	contextPkg "VistaVoice/pkg/context"
	"VistaVoice/pkg/log"
	websocketPkg "VistaVoice/pkg/websocket"
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
)

const streamCommandTimeout = 30 * time.Second

// VoiceStream is the live bridge between a browser screen and the
// voice manager. The browser does speech recognition and synthesis;
// this end owns arbitration, wake-word pausing, classification, and
// navigation. One connection per owner.
func (h *AssistantHandler) VoiceStream(conn *websocket.Conn) {
	owner := voice.OwnerID(conn.Params("owner"))
	userType := conn.Query("user_type", "guest")
	sessionID := conn.Query("session_id")
	pageContext := conn.Query("page_context")

	requestID, _ := conn.Locals("X-Request-ID").(string)

	h.hub.Register(owner, conn)
	defer h.hub.Unregister(owner)

	session := voice.NewSession(h.log, h.voiceManager, voice.SessionConfig{
		Owner:        owner,
		UserType:     userType,
		PauseTimeout: h.pauseTimeout,
		OnCommand: func(text string) {
			h.handleStreamCommand(requestID, owner, text, userType, sessionID, pageContext)
		},
		OnDigits: func(digits string) {
			frame := websocketPkg.ServerFrame{Type: "digits", Text: voice.FormatPhoneNumber(digits)}
			if err := h.hub.Send(owner, frame); err != nil {
				h.log.WithFields(log.Fields{
					"request_id": requestID,
					"owner":      owner,
					"error":      err.Error(),
				}).Warn("Failed to send digits frame")
			}
		},
		OnDenied: func(holder voice.OwnerID) {
			frame := websocketPkg.ServerFrame{Type: "denied", Owner: string(holder)}
			if err := h.hub.Send(owner, frame); err != nil {
				h.log.WithFields(log.Fields{
					"request_id": requestID,
					"owner":      owner,
					"error":      err.Error(),
				}).Warn("Failed to send denied frame")
			}
		},
	})
	defer session.Close()

	if session.Start() {
		if err := h.hub.Send(owner, websocketPkg.ServerFrame{Type: "acquired", Owner: string(owner)}); err != nil {
			h.log.WithFields(log.Fields{
				"request_id": requestID,
				"owner":      owner,
				"error":      err.Error(),
			}).Warn("Failed to send acquired frame")
		}
	}

	for {
		var frame websocketPkg.ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			h.log.WithFields(log.Fields{
				"request_id": requestID,
				"owner":      owner,
				"error":      err.Error(),
			}).Debug("Voice stream closed")
			break
		}

		switch frame.Type {
		case "utterance":
			h.hub.Dispatch(owner, frame.Text, frame.IsFinal)
		case "recognition_end":
			h.hub.DispatchEnd(owner)
		case "speech_end":
			h.hub.DispatchSpeechEnd(owner)
		}
	}

}

// handleStreamCommand runs a final utterance through the command
// pipeline, voices the selected response, and pushes any navigation
// directive down the stream.
func (h *AssistantHandler) handleStreamCommand(requestID string, owner voice.OwnerID, text, userType, sessionID, pageContext string) {
	c, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), streamCommandTimeout)
	defer cancel()

	result, err := h.assistantService.ProcessCommand(c, assistant.CommandRequest{
		Text:        text,
		UserType:    userType,
		SessionID:   sessionID,
		PageContext: pageContext,
	})
	if err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"owner":      owner,
			"error":      err.Error(),
		}).Warn("Stream command processing failed")
		return
	}

	h.voiceManager.Speak(result.Response.Text)

	switch result.Directive.Action {
	case "navigate", "back", "reset":
		frame := websocketPkg.ServerFrame{
			Type:   "navigate",
			Action: result.Directive.Action,
			Route:  result.Directive.Route,
		}
		if err := h.hub.Send(owner, frame); err != nil {
			h.log.WithFields(log.Fields{
				"request_id": requestID,
				"owner":      owner,
				"error":      err.Error(),
			}).Warn("Failed to send navigate frame")
		}
	case "stop":
		h.voiceManager.StopSpeaking()
		h.voiceManager.Release(owner)
	}
}
