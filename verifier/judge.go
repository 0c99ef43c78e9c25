// Package verifier scores finished reasoning traces.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"reasoning/llm"
	"reasoning/prompt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	MinScore = -10
	MaxScore = 10
)

const SystemPrompt = `You are a strict judge of step by step reasoning.

Given a question, a reasoning trace and its answer, rate how correct and sound the
reasoning is on a scale from -10 (wrong or incoherent) to 10 (correct and rigorous).
Reply in exactly this format:

Score: <integer between -10 and 10>
Reason: <one or two sentences>
`

const scorePrefix = "Score:"

var ErrMalformedScore = errors.New("malformed verifier score")

// Judge asks a chat model to grade a trace.
type Judge struct {
	provider  llm.Provider
	model     string
	maxTokens int
}

type Option func(j *Judge)

func WithModel(model string) Option {
	return func(j *Judge) {
		j.model = model
	}
}

func WithMaxTokens(tokens int) Option {
	return func(j *Judge) {
		j.maxTokens = tokens
	}
}

func NewJudge(provider llm.Provider, options ...Option) *Judge {
	j := &Judge{provider: provider}
	for _, option := range options {
		option(j)
	}
	return j
}

// Score grades the trace in one chat call. Scores outside of the judge scale
// are kept as returned.
func (j *Judge) Score(ctx context.Context, question string, steps []string) (float64, error) {
	resp, err := j.provider.Chat(ctx, &llm.ChatRequest{
		Model:        j.model,
		SystemPrompt: SystemPrompt,
		Messages:     prompt.VerifierMessages(question, steps),
		MaxTokens:    j.maxTokens,
	})
	if err != nil {
		return 0, fmt.Errorf("%s chat: %w", j.provider.Name(), err)
	}

	score, err := ParseScore(resp.Content)
	if err != nil {
		return 0, err
	}
	if score < MinScore || score > MaxScore {
		log.Warn().Int("score", score).Msg("verifier score outside of the judge scale")
	}
	return float64(score), nil
}

// ParseScore reads the integer of the first line starting with "Score:".
func ParseScore(content string) (int, error) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, scorePrefix) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, scorePrefix))
		score, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedScore, value)
		}
		return score, nil
	}
	return 0, fmt.Errorf("%w: no score line", ErrMalformedScore)
}
