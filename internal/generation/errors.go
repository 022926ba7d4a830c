package generation

import "fmt"

// GenerationError covers every way the AI call can fail: network, quota,
// refusal or an unusable response.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate quiz: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func fail(format string, args ...any) error {
	return &GenerationError{Err: fmt.Errorf(format, args...)}
}
