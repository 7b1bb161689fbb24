package shadertoy

import "errors"

var (
	// ErrNotFound is returned when neither the API nor the page knows the shader.
	ErrNotFound = errors.New("shader not found or private")

	// ErrNetwork is returned when a request fails or the server answers
	// with an unexpected status.
	ErrNetwork = errors.New("network error")

	// ErrParse is returned when a response body cannot be decoded.
	ErrParse = errors.New("parse error")
)
