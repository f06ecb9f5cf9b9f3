package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/ent0n29/interviewd/internal/config"
	"github.com/ent0n29/interviewd/internal/interview"
	"github.com/ent0n29/interviewd/internal/memory"
	"github.com/ent0n29/interviewd/internal/observability"
)

// SessionHeader lets a client pick its session; the configured default is used otherwise.
const SessionHeader = "X-Session-ID"

// Interviewer is the orchestration surface the handlers need.
type Interviewer interface {
	Ask(ctx context.Context, sessionID, question string) (interview.Result, error)
	History(ctx context.Context, sessionID string) memory.Transcript
	HasHistory(ctx context.Context, sessionID string) bool
	Clear(ctx context.Context, sessionID string) bool
	Facts(ctx context.Context, sessionID string) memory.FactMap
}

// Pinger reports backend readiness for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	cfg         config.Config
	interviewer Interviewer
	ready       Pinger
	metrics     *observability.Metrics
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

func New(cfg config.Config, interviewer Interviewer, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:         cfg,
		interviewer: interviewer,
		metrics:     metrics,
		logger:      logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// WithReadiness registers a readiness probe used by /readyz.
func (s *Server) WithReadiness(p Pinger) *Server {
	s.ready = p
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", SessionHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/text-interview", s.handleTextInterview)
		r.Get("/get-memory", s.handleGetMemory)
		r.Post("/clear-memory", s.handleClearMemory)
		r.Get("/get-facts", s.handleGetFacts)
		r.Get("/perf/latency", s.handlePerfLatency)
		r.Get("/interview/ws", s.handleInterviewWS)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ping(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type textInterviewRequest struct {
	UserQuestion json.RawMessage `json:"userQuestion"`
}

// questionText accepts a JSON string, number or true as the question. Null, false,
// objects and arrays count as no question.
func questionText(raw json.RawMessage) string {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case 't':
		return "true"
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	default:
		return ""
	}
}

type textInterviewResponse struct {
	UserQuestion string `json:"userQuestion"`
	BotAnswer    string `json:"botAnswer"`
}

func (s *Server) handleTextInterview(w http.ResponseWriter, r *http.Request) {
	const endpoint = "text_interview"

	var req textInterviewRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		s.reply(w, endpoint, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body.", Details: err.Error()})
		return
	}
	question := questionText(req.UserQuestion)
	if strings.TrimSpace(question) == "" {
		s.reply(w, endpoint, http.StatusBadRequest, errorResponse{Error: "No question text provided."})
		return
	}

	sessionID := s.sessionID(r)
	res, err := s.interviewer.Ask(r.Context(), sessionID, question)
	if err != nil {
		if errors.Is(err, interview.ErrEmptyQuestion) {
			s.reply(w, endpoint, http.StatusBadRequest, errorResponse{Error: "No question text provided."})
			return
		}
		s.logger.Error("interview pipeline failed", "session_id", sessionID, "error", err)
		s.reply(w, endpoint, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to process request through the LLM. Check backend logs and API key.",
			Details: err.Error(),
		})
		return
	}

	s.reply(w, endpoint, http.StatusOK, textInterviewResponse{
		UserQuestion: question,
		BotAnswer:    res.Answer,
	})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	history := s.interviewer.History(r.Context(), s.sessionID(r))
	if history == nil {
		history = memory.Transcript{}
	}
	s.reply(w, "get_memory", http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleClearMemory(w http.ResponseWriter, r *http.Request) {
	if !s.interviewer.Clear(r.Context(), s.sessionID(r)) {
		s.reply(w, "clear_memory", http.StatusInternalServerError, errorResponse{Error: "Failed to clear memory"})
		return
	}
	s.reply(w, "clear_memory", http.StatusOK, map[string]any{
		"success": true,
		"message": "Memory cleared.",
	})
}

func (s *Server) handleGetFacts(w http.ResponseWriter, r *http.Request) {
	facts := s.interviewer.Facts(r.Context(), s.sessionID(r))
	if facts == nil {
		facts = memory.FactMap{}
	}
	s.reply(w, "get_facts", http.StatusOK, map[string]any{"facts": facts})
}

func (s *Server) sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	return s.cfg.DefaultSessionID
}

func (s *Server) reply(w http.ResponseWriter, endpoint string, status int, v any) {
	s.metrics.ObserveRequest(endpoint, status)
	respondJSON(w, status, v)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
