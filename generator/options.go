package generator

type Option func(*Options)

type Options struct {
	ApiKey          string
	Model           string
	PromptPrefix    string
	Temperature     float32
	MaxOutputTokens int
	TopP            float32
	TopK            int
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithPromptPrefix(prefix string) Option {
	return func(o *Options) {
		o.PromptPrefix = prefix
	}
}

func WithTemperature(temperature float32) Option {
	return func(o *Options) {
		o.Temperature = temperature
	}
}

func WithMaxOutputTokens(tokens int) Option {
	return func(o *Options) {
		o.MaxOutputTokens = tokens
	}
}

func WithTopP(topP float32) Option {
	return func(o *Options) {
		o.TopP = topP
	}
}

func WithTopK(topK int) Option {
	return func(o *Options) {
		o.TopK = topK
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxOutputTokens: 1024,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Prompt prepends the configured prefix, if any.
func (o Options) Prompt(prompt string) string {
	if len(o.PromptPrefix) > 0 {
		return o.PromptPrefix + "\n" + prompt
	}
	return prompt
}
