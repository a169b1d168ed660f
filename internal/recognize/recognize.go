// Package recognize defines the text-recognition boundary. The core consumes
// recognized text as newline-joined lines in top-to-bottom reading order; the
// recognition engine itself is an external collaborator behind the Recognizer
// interface.
package recognize

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnreadableImage indicates the recognition engine could not process the
// input at all. Recognition failures are terminal for a capture: the caller
// surfaces them and the user recaptures; no automatic retry.
var ErrUnreadableImage = errors.New("unreadable image")

// RecognitionError wraps an underlying engine failure.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("text recognition failed: %s", e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Recognizer converts a captured document into recognized text. Cancellation
// is expressed through ctx.
type Recognizer interface {
	Recognize(ctx context.Context, input []byte) (string, error)
}
