package updates

import (
	"io"
	"net/http"

	"github.com/dev-dhg/tgbot/pkg/botapi"
)

// maxUpdateSize bounds a webhook request body.
const maxUpdateSize = 1 << 20

// WebhookHandler receives updates pushed by Telegram and passes them to
// the handler. Malformed updates are answered with 400 so they show up in
// getWebhookInfo's last_error_message.
type WebhookHandler struct {
	handler Handler
}

func NewWebhookHandler(handler Handler) *WebhookHandler {
	return &WebhookHandler{handler: handler}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateSize))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	update, err := botapi.DecodeUpdate(body)
	if err != nil {
		logger.Warningf("rejecting webhook update: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.handler.HandleUpdate(r.Context(), *update)
	w.WriteHeader(http.StatusOK)
}
