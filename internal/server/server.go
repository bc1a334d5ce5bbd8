// Package server exposes the inbound webhook surface. Messages arrive as
// form posts carrying the sender and the message text; replies go out
// through the configured messaging channel, or in the HTTP response when
// no channel is configured.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/datachat-labs/datachat/internal/config"
	"github.com/datachat-labs/datachat/internal/logging"
	"github.com/datachat-labs/datachat/internal/messaging"
	"github.com/datachat-labs/datachat/internal/router"
)

// Server handles inbound webhook messages
type Server struct {
	cfg    config.ServerConfig
	router *router.Router
	sender messaging.Sender
	log    *logging.Logger
	http   *http.Server
}

// New creates a webhook server. sender may be nil, in which case replies
// are written to the HTTP response body instead of an outbound channel.
func New(cfg config.ServerConfig, rt *router.Router, sender messaging.Sender, log *logging.Logger) *Server {
	s := &Server{cfg: cfg, router: rt, sender: sender, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/", s.handleHealth)

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  parseDurationOr(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: parseDurationOr(cfg.WriteTimeout, 120*time.Second),
	}

	return s
}

// ListenAndServe runs the server until Shutdown or a listener error
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.http.Addr).Info("webhook server listening")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := parseDurationOr(s.cfg.ShutdownTimeout, 10*time.Second)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return s.http.Shutdown(ctx)
}

// Handler returns the server's HTTP handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// handleWebhook processes one inbound message. The reply always goes
// somewhere: the outbound channel when one is configured, the response
// body otherwise. Processing failures surface as user-safe reply text,
// never as error status codes, so the upstream channel does not retry.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")

	requestID := uuid.New().String()
	log := s.log.WithFields(map[string]interface{}{
		"request_id": requestID,
		"from":       from,
	})

	if body == "" {
		log.Warn("empty message body")
		http.Error(w, "missing Body", http.StatusBadRequest)

		return
	}

	log.WithField("message", body).Info("inbound message")

	decision := s.router.Route(body)
	reply := s.router.Dispatch(r.Context(), decision, body)

	log.WithFields(map[string]interface{}{
		"intent": string(decision.Intent),
		"reason": string(decision.Reason),
	}).Info("message dispatched")

	if s.sender != nil && from != "" {
		if err := s.sender.Send(r.Context(), from, reply); err != nil {
			log.WithError(err).Error("failed to deliver reply")
			http.Error(w, "delivery failed", http.StatusBadGateway)

			return
		}

		w.WriteHeader(http.StatusNoContent)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, reply)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}

	return d
}
