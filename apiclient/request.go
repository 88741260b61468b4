package apiclient

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/pkg/errors"
)

// Request describes one backend call. Path is relative to the API base URL.
type Request struct {
	Method string
	Path   string
	Body   any // JSON encoded when non-nil
	Header http.Header
}

// Response is a fully read backend response
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

// Decode unmarshals the JSON body into out. An empty body leaves out untouched.
func (r *Response) Decode(out any) error {
	if out == nil || len(r.Body) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(r.Body, out), "[Response.Decode]")
}

func (r *Response) ok() bool {
	return r.Status >= 200 && r.Status < 300
}

// errorBody is the backend's error shape. Older endpoints use msg instead of message.
type errorBody struct {
	Message   string `json:"message"`
	Msg       string `json:"msg"`
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

func (r *Response) apiError() *apperrors.APIError {
	var body errorBody
	_ = json.Unmarshal(r.Body, &body)

	message := body.Message
	if message == "" {
		message = body.Msg
	}
	if message == "" {
		message = body.Error
	}
	return &apperrors.APIError{
		Status:    r.Status,
		Kind:      apperrors.Classify(r.Status, body.ErrorType),
		Message:   message,
		ErrorType: body.ErrorType,
	}
}
