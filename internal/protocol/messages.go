package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeAsk         MessageType = "ask"
	TypeGetMemory   MessageType = "get_memory"
	TypeClearMemory MessageType = "clear_memory"

	TypeAnswer      MessageType = "answer"
	TypeMemory      MessageType = "memory"
	TypeSystemEvent MessageType = "system_event"
	TypeErrorEvent  MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// Ask carries one question. SessionID is optional; the connection's session is used when empty.
type Ask struct {
	Type         MessageType `json:"type"`
	SessionID    string      `json:"session_id,omitempty"`
	UserQuestion string      `json:"userQuestion"`
}

type GetMemory struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
}

type ClearMemory struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
}

type Answer struct {
	Type         MessageType `json:"type"`
	SessionID    string      `json:"session_id"`
	TurnID       string      `json:"turn_id"`
	UserQuestion string      `json:"userQuestion"`
	BotAnswer    string      `json:"botAnswer"`
	Extraction   string      `json:"extraction"`
}

// Memory mirrors the HTTP get-memory payload; History is the encoded transcript.
type Memory struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"session_id"`
	History   json.RawMessage `json:"history"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Source    string      `json:"source"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeAsk:
		var msg Ask
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if strings.TrimSpace(msg.UserQuestion) == "" {
			return nil, errors.New("invalid ask: userQuestion is required")
		}
		return msg, nil
	case TypeGetMemory:
		var msg GetMemory
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeClearMemory:
		var msg ClearMemory
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
