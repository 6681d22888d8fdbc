// Package toxicity scores post text with a language model served behind an
// OpenAI-compatible endpoint and annotates diffusion graph nodes.
package toxicity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dd0wney/fedigraph/pkg/config"
)

// ErrUnparseableScore is returned when the model reply is not a number.
var ErrUnparseableScore = errors.New("toxicity: unparseable model response")

const promptTemplate = `Analyze the following text for toxicity. Toxicity refers to harmful or abusive language, including insults, threats, harassment, or hate speech. Rate the toxicity on a scale from 0 to 1, where 0 is not toxic at all and 1 is extremely toxic. Only respond with the numeric score.

Text: %s

Toxicity score:`

// Prompt renders the scoring prompt for text.
func Prompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// ParseScore parses a model reply as a number and clamps it to [0, 1].
func ParseScore(reply string) (float64, error) {
	s := strings.TrimSpace(reply)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableScore, truncate(s, 80))
	}
	return min(max(v, 0), 1), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Scorer returns a toxicity score in [0, 1] for a piece of text.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// LLMScorer asks a chat model for a score.
type LLMScorer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewLLMScorer creates a scorer for the toxicity config section.
func NewLLMScorer(cfg config.ToxicityConfig) *LLMScorer {
	clientConfig := openai.DefaultConfig(cfg.APIKey.Value())
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &LLMScorer{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Score sends the prompt for text and parses the reply.
func (s *LLMScorer) Score(ctx context.Context, text string) (float64, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: Prompt(text)},
		},
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("toxicity: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("%w: empty response", ErrUnparseableScore)
	}
	return ParseScore(resp.Choices[0].Message.Content)
}
