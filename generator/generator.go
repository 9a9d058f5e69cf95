package generator

import (
	"context"
	"errors"
)

var ErrNoResponse = errors.New("no response from model")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
