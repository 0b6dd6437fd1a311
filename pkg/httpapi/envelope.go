package httpapi

import (
	"encoding/json"
	"net/http"
)

// Meta keys carried by ErrorEnvelope.
const (
	MetaRequestID = "request_id"
	MetaAttribute = "attribute"
)

// ErrorEnvelope is the body of every JSON error response:
// {"message": ..., "code": ..., "meta": {"request_id": ..., "attribute": ...}}.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// NewError builds an envelope. Empty requestID or attribute are left out of meta.
func NewError(code, message, requestID, attribute string) *ErrorEnvelope {
	env := &ErrorEnvelope{Code: code, Message: message}
	env.set(MetaRequestID, requestID)
	env.set(MetaAttribute, attribute)
	return env
}

func (e *ErrorEnvelope) set(key, value string) {
	if value == "" {
		return
	}
	if e.Meta == nil {
		e.Meta = make(map[string]string, 2)
	}
	e.Meta[key] = value
}

func (e *ErrorEnvelope) RequestID() string {
	return e.Meta[MetaRequestID]
}

// Attribute names the offending input parameter, if any.
func (e *ErrorEnvelope) Attribute() string {
	return e.Meta[MetaAttribute]
}

// Write renders the envelope with the given status.
func (e *ErrorEnvelope) Write(w http.ResponseWriter, status int) error {
	return WriteJSON(w, status, e)
}

// WriteJSON encodes payload before touching w, so an unencodable payload leaves the
// response untouched and returns the error.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	var body []byte
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = append(raw, '\n')
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return nil
	}
	_, err := w.Write(body)
	return err
}
