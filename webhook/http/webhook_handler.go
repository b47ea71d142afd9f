package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-github/v75/github"
	"github.com/rs/zerolog/log"
)

const WebhookPath = "/webhook/git"

// PushHandler consumes push events from the content repository.
type PushHandler interface {
	HandlePushEvent(evt *github.PushEvent) error
}

// WebhookHandler receives GitHub webhooks for the content repository. Pushes
// from any other repository are acknowledged and dropped.
type WebhookHandler struct {
	webhookSecret []byte
	repoFullName  string
	pushes        PushHandler
}

func NewWebhookHandler(pushes PushHandler, webhookSecret string, repoFullName string) *WebhookHandler {
	if webhookSecret == "" {
		panic("webhook secret is not set")
	}

	return &WebhookHandler{
		webhookSecret: []byte(webhookSecret),
		repoFullName:  repoFullName,
		pushes:        pushes,
	}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post(WebhookPath, h.HandleGitWebhook)
}

// Router returns a chi router serving only the webhook route.
func (h *WebhookHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func (h *WebhookHandler) HandleGitWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, h.webhookSecret)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected webhook payload")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		http.Error(w, "Invalid event", http.StatusBadRequest)
		return
	}

	switch evt := event.(type) {
	case *github.PushEvent:
		if name := evt.GetRepo().GetFullName(); h.repoFullName != "" && name != h.repoFullName {
			log.Warn().Str("repo", name).Msg("Ignoring push from unexpected repository")
			break
		}
		err = h.pushes.HandlePushEvent(evt)
	case *github.PingEvent:
		log.Info().Int64("hookID", evt.GetHookID()).Msg("Webhook ping received")
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to handle webhook event")
		http.Error(w, "Error handling event", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
