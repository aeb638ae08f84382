package session

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSessionActive   = errors.New("another form is already open")
	ErrNoSession       = errors.New("no form is open")
	ErrNoPendingDelete = errors.New("no delete is pending")
	ErrBusy            = errors.New("request in progress")
	ErrUnknownField    = errors.New("unknown field")
	ErrNotOrderForm    = errors.New("open form is not an order")
	ErrItemIndex       = errors.New("item index out of range")
)

// FieldError is one failed rule. Field is the logical field name, e.g. "sku"
// or "items[0].quantity".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rule a draft failed, in form order.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the message recorded for field, if any.
func (e *ValidationError) Field(name string) (string, bool) {
	for _, fe := range e.Errors {
		if fe.Field == name {
			return fe.Message, true
		}
	}
	return "", false
}

// ByField returns the errors keyed by field name, for per-field error slots.
func (e *ValidationError) ByField() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

func (e *ValidationError) add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg})
}

// orNil keeps a typed nil out of error interfaces.
func (e *ValidationError) orNil() *ValidationError {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
