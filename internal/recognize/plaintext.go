package recognize

import (
	"context"
	"unicode/utf8"
)

// PlainText treats its input as already-recognized text. It backs the CLI
// path where recognition ran elsewhere and only the text survives, and it
// keeps the pipeline testable without a recognition engine.
type PlainText struct{}

// Recognize returns the input verbatim after checking it is valid text.
func (PlainText) Recognize(ctx context.Context, input []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(input) == 0 || !utf8.Valid(input) {
		return "", &RecognitionError{Err: ErrUnreadableImage}
	}
	return string(input), nil
}
