package enricher

import (
	"context"
	"strings"

	"github.com/w-h-a/redflag/generator"
	"go.uber.org/zap"
)

type Request struct {
	CaseContent string
	Keywords    string
	Sentences   []string
}

// Enricher extracts highlight keywords from a historical case. It never fails:
// when the model cannot answer, the leading characters of the case are used.
type Enricher struct {
	options   Options
	generator generator.Generator
}

func (e *Enricher) Highlight(ctx context.Context, req Request) string {
	if e.generator == nil {
		return e.fallback(req, "no generator configured", nil)
	}

	if e.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.options.Timeout)
		defer cancel()
	}

	output, err := e.generator.Generate(ctx, buildPrompt(req))
	if err != nil {
		return e.fallback(req, "highlight generation failed", err)
	}

	highlight := normalize(output, e.options.MaxKeywords)
	if len(strings.TrimSpace(highlight)) == 0 {
		return e.fallback(req, "highlight generation returned no keywords", nil)
	}

	e.options.Logger.Debug("highlight extracted", zap.String("highlight", highlight))

	return highlight
}

func (e *Enricher) fallback(req Request, detail string, err error) string {
	fields := []zap.Field{zap.Int("fallbackRunes", e.options.FallbackRunes)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	e.options.Logger.Warn(detail, fields...)

	return Truncate(req.CaseContent, e.options.FallbackRunes)
}

func NewEnricher(gen generator.Generator, opts ...Option) *Enricher {
	options := NewOptions(opts...)

	return &Enricher{
		options:   options,
		generator: gen,
	}
}
