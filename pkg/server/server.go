package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/dev-dhg/tgbot/pkg/botapi"
	"github.com/dev-dhg/tgbot/pkg/config"
	"github.com/dev-dhg/tgbot/pkg/messaging"
)

var logger = loggo.GetLogger("tgbot.server")

// maxRequestSize bounds /send and /cron/run bodies; data: URI refs carry
// whole files.
var maxRequestSize int64 = 20 << 20

// JobRunner triggers scheduled jobs on demand. *cron.Scheduler implements it.
type JobRunner interface {
	RunJobByName(ctx context.Context, name string) error
}

type Server struct {
	providers messaging.Registry
	scheduler JobRunner
	webhook   http.Handler

	mu  sync.RWMutex
	cfg *config.Config
}

// NewServer wires the HTTP API. scheduler and webhook may be nil; the
// matching routes then answer 503 and 404 respectively.
func NewServer(cfg *config.Config, providers messaging.Registry, scheduler JobRunner, webhook http.Handler) *Server {
	return &Server{
		cfg:       cfg,
		providers: providers,
		scheduler: scheduler,
		webhook:   webhook,
	}
}

// UpdateConfig swaps the config used for authentication.
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *Server) config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Handler returns the routes. The webhook path is fixed at construction.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/send", s.requireAuth(s.handleSend))
	mux.HandleFunc("/cron/run", s.requireAuth(s.handleCronRun))
	if s.webhook != nil {
		mux.Handle(s.config().Webhook.Path, s.webhook)
	}
	return mux
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config().Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("server listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Annotate(err, "serving http")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Annotate(err, "shutting down http server")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

// requireAuth checks "Authorization: Bearer <token>" against
// server.authToken. An empty token disables the check.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		want := s.config().Server.AuthToken
		if want != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

type SendRequest struct {
	Provider string `json:"provider,omitempty"`
	ChatID   string `json:"chatId"`
	// Type is text (default), image, audio, video or document.
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
	Ref     string `json:"ref,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type SendResponse struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req SendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.ChatID == "" {
		http.Error(w, "chatId is required", http.StatusBadRequest)
		return
	}
	provider, ok := s.providers.Get(req.Provider)
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown provider %q", req.Provider), http.StatusBadRequest)
		return
	}

	var err error
	ctx := r.Context()
	switch req.Type {
	case "", "text":
		if req.Message == "" {
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}
		err = provider.SendMessage(ctx, req.ChatID, req.Message)
	case "image", "audio", "video", "document":
		if req.Ref == "" {
			http.Error(w, "ref is required", http.StatusBadRequest)
			return
		}
		err = sendMedia(ctx, provider, req)
	default:
		http.Error(w, fmt.Sprintf("Unknown type %q", req.Type), http.StatusBadRequest)
		return
	}

	if err != nil {
		logger.Errorf("sending to %s via %s: %v", req.ChatID, provider.Name(), err)
		writeJSON(w, statusFor(err), SendResponse{Error: err.Error()})
		return
	}
	logger.Infof("sent %s message to %s via %s", typeOrText(req.Type), req.ChatID, provider.Name())
	writeJSON(w, http.StatusOK, SendResponse{Status: "sent"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "Invalid request body", http.StatusBadRequest)
}

func sendMedia(ctx context.Context, p messaging.Provider, req SendRequest) error {
	switch req.Type {
	case "image":
		return p.SendImage(ctx, req.ChatID, req.Ref, req.Caption)
	case "audio":
		return p.SendAudio(ctx, req.ChatID, req.Ref, req.Caption)
	case "video":
		return p.SendVideo(ctx, req.ChatID, req.Ref, req.Caption)
	default:
		return p.SendDocument(ctx, req.ChatID, req.Ref, req.Caption)
	}
}

// statusFor maps delivery errors onto HTTP codes: caller mistakes are 400,
// everything Telegram or the network rejected is 502.
func statusFor(err error) int {
	if errors.Is(err, errors.NotValid) || errors.Is(err, errors.NotSupported) {
		return http.StatusBadRequest
	}
	var apiErr *botapi.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}

func typeOrText(t string) string {
	if t == "" {
		return "text"
	}
	return t
}

type CronRunRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCronRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CronRunRequest
	// Support both JSON body and query parameter
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}
	} else {
		req.Name = r.URL.Query().Get("name")
	}

	if s.scheduler == nil {
		http.Error(w, "Scheduler not available", http.StatusServiceUnavailable)
		return
	}
	if s.config().FindJob(req.Name) < 0 {
		http.Error(w, fmt.Sprintf("Unknown job %q", req.Name), http.StatusNotFound)
		return
	}
	logger.Infof("manually triggered job %s", req.Name)

	// Run asynchronously so the API returns immediately.
	go func() {
		if err := s.scheduler.RunJobByName(context.Background(), req.Name); err != nil {
			logger.Errorf("job %s: %v", req.Name, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"job":    req.Name,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
