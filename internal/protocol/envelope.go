package protocol

import (
	"bytes"
	"encoding/json"

	"github.com/dkeye/Arena/internal/domain"
)

// Inbound is a decoded client frame. Payload stays raw until the schema for
// Type has been looked up.
type Inbound struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Outbound struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Code    domain.Code `json:"code"`
	Message string      `json:"message"`
	Event   EventType   `json:"event,omitempty"`
}

// ParseInbound rejects anything that is not a JSON object with a non-empty type.
func ParseInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, domain.NewError(domain.CodeValidationFailed, "Malformed frame")
	}
	if in.Type == "" {
		return Inbound{}, domain.NewError(domain.CodeValidationFailed, "Missing event type")
	}
	return in, nil
}

func Encode(ev EventType, payload any) ([]byte, error) {
	return json.Marshal(Outbound{Type: ev, Payload: payload})
}

// EncodeError renders err as an error frame. Errors that are not domain
// errors are reported as INTERNAL so their text never reaches a client.
func EncodeError(ev EventType, err error) []byte {
	de := domain.AsError(err)
	b, mErr := Encode(EventError, ErrorPayload{Code: de.Code, Message: de.Message, Event: ev})
	if mErr != nil {
		return []byte(`{"type":"error","payload":{"code":"INTERNAL","message":"Internal error"}}`)
	}
	return b
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
