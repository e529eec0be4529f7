package llmservice

import (
	"context"
	"fmt"
	"strings"

	"medicalbot/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewChatModel connects to an OpenAI-compatible chat completion endpoint.
func NewChatModel(llmConfig *config.LLMConfig) (llms.Model, error) {
	log.Debug().
		Str("base_url", llmConfig.BaseURL).
		Str("model", llmConfig.Model).
		Float64("temperature", llmConfig.SamplingTemperature()).
		Int("max_tokens", llmConfig.MaxTokens).
		Msg("Creating chat model")

	if llmConfig.Key == "" {
		return nil, fmt.Errorf("llm api key is not set (%s)", config.EnvTogetherKey)
	}
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return llm, nil
}

// CallOptions are the sampling settings applied to every completion.
func CallOptions(llmConfig *config.LLMConfig) []llms.CallOption {
	return []llms.CallOption{
		llms.WithTemperature(llmConfig.SamplingTemperature()),
		llms.WithMaxTokens(llmConfig.MaxTokens),
	}
}

// GenerateContent sends messages to llm and returns the first choice's text.
func GenerateContent(ctx context.Context, llm llms.Model, messages []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	res, err := llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return res.Choices[0].Content, nil
}
