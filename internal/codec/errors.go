package codec

import "fmt"

// Reason classifies why a portable link could not be read.
type Reason string

const (
	ReasonInvalidEncoding Reason = "invalid-encoding"
	ReasonInvalidUTF8     Reason = "invalid-utf8"
	ReasonMalformedJSON   Reason = "malformed-json"
	ReasonInvalidQuiz     Reason = "invalid-quiz"
)

// EncodeError is returned when a quiz cannot be turned into a link payload.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode quiz: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError is returned for malformed, corrupt or incompatible link payloads.
type DecodeError struct {
	Reason Reason
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode quiz: %s", e.Reason)
	}
	return fmt.Sprintf("decode quiz: %s: %v", e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
