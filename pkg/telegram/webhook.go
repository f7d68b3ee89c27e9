package telegram

import (
	"encoding/json"
	"net/http"

	"rektbot/pkg/logger"
)

// WebhookHandler handles incoming Telegram webhook requests (framework-level)
// This is a reusable HTTP handler that works through the Bot interface
type WebhookHandler struct {
	updateHandler func(Update)
	log           *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
// The updateHandler will be called for each incoming update
func NewWebhookHandler(updateHandler func(Update), log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		updateHandler: updateHandler,
		log:           log.With("component", "telegram_webhook"),
	}
}

// ServeHTTP implements http.Handler interface
func (wh *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		wh.log.Warnw("Invalid webhook request method", "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		wh.log.Errorw("Failed to decode webhook update", "error", err)
		wh.sendResponse(w, http.StatusBadRequest, map[string]interface{}{
			"ok":    false,
			"error": "Invalid JSON",
		})
		return
	}

	// Post-process: parse commands from message text
	if update.Message != nil {
		update.Message.ParseCommand()
	}

	wh.log.Debugw("Received webhook update",
		"update_id", update.UpdateID,
		"has_message", update.HasMessage(),
		"has_callback", update.HasCallback(),
	)

	// Call user's update handler (non-blocking)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				wh.log.Errorw("Panic in update handler",
					"panic", rec,
					"update_id", update.UpdateID,
				)
			}
		}()

		wh.updateHandler(update)
	}()

	// Always return 200 OK to acknowledge receipt
	// This prevents Telegram from retrying
	wh.sendResponse(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// HealthCheck returns webhook health status
func (wh *WebhookHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	wh.sendResponse(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "telegram_webhook",
	})
}

func (wh *WebhookHandler) sendResponse(w http.ResponseWriter, statusCode int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
