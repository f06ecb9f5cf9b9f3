package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ent0n29/interviewd/internal/interview"
	"github.com/ent0n29/interviewd/internal/protocol"
	"github.com/ent0n29/interviewd/internal/reliability"
)

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.cfg.AllowAnyOrigin() {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		// Non-browser clients often omit Origin.
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if strings.EqualFold(strings.TrimRight(allowed, "/"), strings.TrimRight(origin, "/")) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (s *Server) handleInterviewWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = s.sessionID(r)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan any, 16)
	outbound := make(chan any, 16)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		defer close(outbound)
		s.runConnection(ctx, sessionID, inbound, outbound)
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range outbound {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				cancel()
				// Drain so the runner never blocks on a dead socket.
				for range outbound {
				}
				return
			}
			if t, ok := messageTypeOf(msg); ok {
				s.metrics.ObserveWSMessage("outbound", string(t))
			}
		}
	}()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	detail := "new"
	if s.interviewer.HasHistory(ctx, sessionID) {
		detail = "resumed"
	}
	outboundSend(ctx, outbound, protocol.SystemEvent{
		Type:      protocol.TypeSystemEvent,
		SessionID: sessionID,
		Code:      "connected",
		Detail:    detail,
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.metrics.ObserveWSMessage("inbound", "invalid")
			outboundSend(ctx, outbound, protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "invalid_client_message",
				Source:    "gateway",
				Retryable: false,
				Detail:    err.Error(),
			})
			continue
		}
		if t, ok := messageTypeOf(parsed); ok {
			s.metrics.ObserveWSMessage("inbound", string(t))
		}
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- parsed:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	<-writerDone
}

// runConnection handles client messages one at a time, in arrival order.
func (s *Server) runConnection(ctx context.Context, sessionID string, inbound <-chan any, outbound chan<- any) {
	for msg := range inbound {
		var reply any
		switch m := msg.(type) {
		case protocol.Ask:
			reply = s.wsAsk(ctx, pickSession(m.SessionID, sessionID), m.UserQuestion)
		case protocol.GetMemory:
			id := pickSession(m.SessionID, sessionID)
			raw, err := json.Marshal(s.interviewer.History(ctx, id))
			if err != nil {
				reply = wsError(id, "encode_failed", "gateway", false, err)
				break
			}
			reply = protocol.Memory{Type: protocol.TypeMemory, SessionID: id, History: raw}
		case protocol.ClearMemory:
			id := pickSession(m.SessionID, sessionID)
			if !s.interviewer.Clear(ctx, id) {
				reply = wsError(id, "clear_failed", "short_term", true, errors.New("short-term store rejected clear"))
				break
			}
			reply = protocol.SystemEvent{Type: protocol.TypeSystemEvent, SessionID: id, Code: "memory_cleared"}
		default:
			continue
		}
		if !outboundSend(ctx, outbound, reply) {
			// Drain until the reader closes inbound so outbound is never closed under it.
			for range inbound {
			}
			return
		}
	}
}

func (s *Server) wsAsk(ctx context.Context, sessionID, question string) any {
	res, err := s.interviewer.Ask(ctx, sessionID, question)
	if err != nil {
		if errors.Is(err, interview.ErrEmptyQuestion) {
			return wsError(sessionID, "invalid_question", "gateway", false, err)
		}
		s.logger.Error("interview pipeline failed", "session_id", sessionID, "transport", "ws", "error", err)
		class := reliability.ClassifyError(err)
		return wsError(sessionID, "llm_failed", "llm", class == reliability.ClassRetryable || class == reliability.ClassTimeout, err)
	}
	return protocol.Answer{
		Type:         protocol.TypeAnswer,
		SessionID:    sessionID,
		TurnID:       res.TurnID,
		UserQuestion: res.Question,
		BotAnswer:    res.Answer,
		Extraction:   string(res.Extraction.Outcome),
	}
}

func wsError(sessionID, code, source string, retryable bool, err error) protocol.ErrorEvent {
	return protocol.ErrorEvent{
		Type:      protocol.TypeErrorEvent,
		SessionID: sessionID,
		Code:      code,
		Source:    source,
		Retryable: retryable,
		Detail:    err.Error(),
	}
}

func outboundSend(ctx context.Context, outbound chan<- any, msg any) bool {
	select {
	case <-ctx.Done():
		return false
	case outbound <- msg:
		return true
	}
}

func pickSession(requested, fallback string) string {
	if id := strings.TrimSpace(requested); id != "" {
		return id
	}
	return fallback
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.Ask:
		return m.Type, true
	case protocol.GetMemory:
		return m.Type, true
	case protocol.ClearMemory:
		return m.Type, true
	case protocol.Answer:
		return m.Type, true
	case protocol.Memory:
		return m.Type, true
	case protocol.SystemEvent:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
