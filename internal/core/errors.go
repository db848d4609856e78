package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrMissingCredential is returned when analysis is triggered without an API key.
	ErrMissingCredential = errors.New("an API key is required to run the analysis")

	// ErrNoWorkbook is returned when an operation needs an uploaded workbook.
	ErrNoWorkbook = errors.New("no spreadsheet has been uploaded")

	// ErrNoResult is returned when no analysis has completed yet.
	ErrNoResult = errors.New("no analysis result available")

	errEmptyResponse = errors.New("the model returned an empty response")
)

// InferenceErrorKind classifies an inference failure.
type InferenceErrorKind string

const (
	KindAuth          InferenceErrorKind = "auth"
	KindRateLimit     InferenceErrorKind = "rate_limit"
	KindBadRequest    InferenceErrorKind = "bad_request"
	KindNetwork       InferenceErrorKind = "network"
	KindTimeout       InferenceErrorKind = "timeout"
	KindEmptyResponse InferenceErrorKind = "empty_response"
	KindUpstream      InferenceErrorKind = "upstream"
)

// InferenceError wraps a failed call to the inference service with the
// upstream detail.
type InferenceError struct {
	Provider   string
	Kind       InferenceErrorKind
	StatusCode int // HTTP status, 0 when no response was received
	Err        error
}

func (e *InferenceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s inference failed (%s, HTTP %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s inference failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// NewInferenceError classifies err from provider. status is the HTTP status
// of the upstream response, or 0 when none was received.
func NewInferenceError(provider string, status int, err error) *InferenceError {
	return &InferenceError{
		Provider:   provider,
		Kind:       classify(status, err),
		StatusCode: status,
		Err:        err,
	}
}

// asInferenceError keeps an adapter's classification when present.
func asInferenceError(provider string, err error) *InferenceError {
	var inferenceErr *InferenceError
	if errors.As(err, &inferenceErr) {
		return inferenceErr
	}
	return NewInferenceError(provider, 0, err)
}

func classify(status int, err error) InferenceErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 400 && status < 500:
		return KindBadRequest
	case status >= 500:
		return KindUpstream
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindUpstream
}
