// Package web serves the chat page and the JSON chat endpoint.
//
// Endpoints:
//   - GET  /     - chat page, seeds the session transcript
//   - POST /chat - {"message": "..."} -> {"response": "..."}
//
// Backend failures are reported inside "response"; only client input
// errors and session store failures produce error statuses.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/FazinHan/lmstudio-webapp/internal/llm"
	"github.com/FazinHan/lmstudio-webapp/internal/session"
	"github.com/sirupsen/logrus"
)

const (
	// MaxRequestBodySize bounds POST /chat bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	shutdownTimeout = 5 * time.Second
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Relay is the chat flow the handlers drive.
type Relay interface {
	Start(ctx context.Context, sessionID string) (session.Transcript, error)
	Send(ctx context.Context, sessionID string, text string) (string, error)
}

type Options struct {
	Title string
	// RateLimit caps POST /chat requests per minute, 0 disables it.
	RateLimit int
	// SecureCookie marks the session cookie as HTTPS only.
	SecureCookie bool
}

type Server struct {
	relay   Relay
	opts    Options
	router  *http.ServeMux
	handler http.Handler
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(relay Relay, opts Options) *Server {
	if opts.Title == "" {
		opts.Title = "Local AI Chat"
	}
	s := &Server{
		relay:  relay,
		opts:   opts,
		router: http.NewServeMux(),
	}
	s.setupRoutes()
	s.handler = logRequests(s.router)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.Handle("POST /chat", rateLimit(s.opts.RateLimit, http.HandlerFunc(s.handleChat)))
}

// ListenAndServeTLS blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServeTLS(ctx context.Context, addr string, certFile string, keyFile string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServeTLS(certFile, keyFile)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logrus.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type pageMessage struct {
	User    bool
	Content template.HTML
}

type pageData struct {
	Title    string
	Messages []pageMessage
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)

	transcript, err := s.relay.Start(r.Context(), id)
	if err != nil {
		logrus.WithError(err).WithField("session", id).Error("Failed to load session")
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return
	}

	data := pageData{Title: s.opts.Title}
	for _, msg := range transcript {
		switch msg.Role {
		case llm.User:
			data.Messages = append(data.Messages, pageMessage{User: true, Content: template.HTML(template.HTMLEscapeString(msg.Content))})
		case llm.Assistant:
			data.Messages = append(data.Messages, pageMessage{Content: renderMarkdown(msg.Content)})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		logrus.WithError(err).Error("Failed to render chat page")
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		logrus.WithError(err).Debug("Invalid chat request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}

	id := s.sessionID(w, r)
	reply, err := s.relay.Send(r.Context(), id, req.Message)
	if err != nil {
		logrus.WithError(err).WithField("session", id).Error("Chat turn failed")
		writeError(w, http.StatusInternalServerError, "Session unavailable")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: reply})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
