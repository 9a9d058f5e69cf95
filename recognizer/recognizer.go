package recognizer

import (
	"context"
	"errors"
)

var ErrRecognitionFailed = errors.New("recognition failed")

// Recognizer sends an image to the external risk model and returns
// its OCR text, risk assessment and, optionally, an embedding of the
// recognized text.
type Recognizer interface {
	Recognize(ctx context.Context, filename string, image []byte) (Result, error)
}
