package domain

import (
	"errors"
	"net/http"
)

// Kind classifies every failure the two endpoints can report.
type Kind string

const (
	InvalidMethod    Kind = "InvalidMethod"
	MissingInput     Kind = "MissingInput"
	NoSuitableFormat Kind = "NoSuitableFormat"
	ExtractionDenied Kind = "ExtractionDenied"
	MalformedData    Kind = "MalformedData"
	OriginForbidden  Kind = "OriginForbidden"
	OriginError      Kind = "OriginError"
	StreamingError   Kind = "StreamingError"
	InternalError    Kind = "InternalError"
)

var statusByKind = map[Kind]int{
	InvalidMethod:    http.StatusMethodNotAllowed,
	MissingInput:     http.StatusBadRequest,
	NoSuitableFormat: http.StatusBadRequest,
	ExtractionDenied: http.StatusForbidden,
	MalformedData:    http.StatusInternalServerError,
	OriginForbidden:  http.StatusForbidden,
	OriginError:      http.StatusBadGateway,
	StreamingError:   http.StatusInternalServerError,
	InternalError:    http.StatusInternalServerError,
}

var messageByKind = map[Kind]string{
	InvalidMethod:    "Method not allowed",
	MissingInput:     "No URL provided",
	NoSuitableFormat: "No suitable video format found",
	ExtractionDenied: "Video unavailable or restricted",
	MalformedData:    "Malformed video data",
	OriginForbidden:  "Access to the video is forbidden",
	OriginError:      "Failed to fetch video",
	StreamingError:   "Error while streaming video",
	InternalError:    "Internal server error",
}

// Error is the single error type handed from services to handlers.
type Error struct {
	Kind    Kind
	Message string
	Details string
	// Status carries the origin status for OriginError.
	Status int
	Err    error
}

// NewError builds an error of the given kind with its default message.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: messageByKind[kind], Err: err}
}

// OriginStatusError reports a non-200 origin response other than 403.
func OriginStatusError(status int) *Error {
	e := NewError(OriginError, nil)
	e.Status = status
	return e
}

func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return string(InternalError)
	}
	msg := string(e.Kind) + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a *Error from err. Anything else becomes InternalError.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e
	}
	return NewError(InternalError, err)
}

// KindOf returns the kind of err, InternalError for foreign errors.
func KindOf(err error) Kind {
	return AsError(err).Kind
}

// StatusOf maps err to the HTTP status sent to the client.
func StatusOf(err error) int {
	e := AsError(err)
	if e.Kind == OriginError && e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}
