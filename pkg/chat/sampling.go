package chat

// Fixed request parameters. They are not user-configurable.
const (
	ResponseCount    int64   = 1
	Temperature      float64 = 0.7
	TopP             float64 = 0.95
	FrequencyPenalty float64 = 0.0
	PresencePenalty  float64 = 0.0
)

// SamplingParams are the generation settings sent with every request.
type SamplingParams struct {
	MaxTokens        int64
	N                int64
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// DefaultSampling returns the fixed sampling settings with the given token cap.
func DefaultSampling(maxTokens int) SamplingParams {
	return SamplingParams{
		MaxTokens:        int64(maxTokens),
		N:                ResponseCount,
		Temperature:      Temperature,
		TopP:             TopP,
		FrequencyPenalty: FrequencyPenalty,
		PresencePenalty:  PresencePenalty,
	}
}
