package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dkeye/Arena/internal/domain"
)

// Schema maps each inbound event to the shape its payload must have.
type Schema struct {
	validate *validator.Validate
	shapes   map[EventType]func() any
}

func NewSchema() *Schema {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Schema{
		validate: v,
		shapes: map[EventType]func() any{
			EventCreateRoom:   func() any { return &CreateRoom{} },
			EventJoinRoom:     func() any { return &RoomRef{} },
			EventMakeMove:     func() any { return &MakeMove{} },
			EventListRooms:    func() any { return &Empty{} },
			EventGetGameState: func() any { return &RoomRef{} },
			EventLeaveRoom:    func() any { return &RoomRef{} },
			EventResetGame:    func() any { return &RoomRef{} },

			EventJoin:     func() any { return &Empty{} },
			EventMove:     func() any { return &Move{} },
			EventChat:     func() any { return &Chat{} },
			EventSit:      func() any { return &Sit{} },
			EventInteract: func() any { return &Interact{} },

			EventMessage: func() any { return &Post{} },
		},
	}
}

func (s *Schema) Known(ev EventType) bool {
	_, ok := s.shapes[ev]
	return ok
}

// Decode returns a pointer to the payload struct registered for ev, or a
// VALIDATION_FAILED error naming the first offending field.
func (s *Schema) Decode(ev EventType, raw json.RawMessage) (any, error) {
	shape, ok := s.shapes[ev]
	if !ok {
		return nil, domain.NewError(domain.CodeValidationFailed, fmt.Sprintf("Unknown event %q", ev))
	}
	p := shape()
	if !isEmpty(raw) {
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, domain.NewError(domain.CodeValidationFailed, decodeMessage(err))
		}
	}
	if err := s.validate.Struct(p); err != nil {
		return nil, domain.NewError(domain.CodeValidationFailed, validationMessage(err))
	}
	return p, nil
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type)
	}
	return "Payload is not a valid object"
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrValidationFailed.Message
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "max":
		return fmt.Sprintf("%s violates %s=%s", fe.Field(), fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s must be a valid %s", fe.Field(), fe.Tag())
	}
}
