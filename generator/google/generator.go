package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/redflag/generator"
	"go.uber.org/zap"
	genaiopt "google.golang.org/api/option"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.options.Model)

	if g.options.Temperature > 0 {
		model.SetTemperature(g.options.Temperature)
	}
	if g.options.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(g.options.MaxOutputTokens))
	}
	if g.options.TopP > 0 {
		model.SetTopP(g.options.TopP)
	}
	if g.options.TopK > 0 {
		model.SetTopK(int32(g.options.TopK))
	}

	rsp, err := model.GenerateContent(ctx, genai.Text(g.options.Prompt(prompt)))
	if err != nil {
		return "", err
	}

	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil || len(rsp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("google: %w", generator.ErrNoResponse)
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return b.String(), nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = "gemini-2.5-flash"
	}

	g := &googleGenerator{
		options: options,
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		detail := "failed to initialize google generator"
		zap.L().Error(detail, zap.Error(err))
		panic(detail)
	}

	g.client = client

	return g
}
