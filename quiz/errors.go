package quiz

import "fmt"

// GenerationError reports that the call to the generative service itself
// failed (network, auth, quota). The attempt is not retried.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("question generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MalformedOutputError reports that the service responded but its output did
// not decode into the expected question shape. The caller must re-invoke to
// retry; nothing is salvaged from a partially valid set.
type MalformedOutputError struct {
	Reason string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %s", e.Reason)
}
