// Package policy implements reasoning step generators for the search.
package policy

import (
	"context"
	"errors"
	"fmt"
	"reasoning/llm"
	"reasoning/prompt"
	"strings"
)

const SystemPrompt = `You are a helpful assistant that answers questions by reasoning step by step.

Write one reasoning step at a time and start it with "### Step X:", where X is the step number.
When the reasoning is complete, give the result under "### Final Answer".

Example

User:
Question: What is sin(60)*cos(60)?
Reasoning:
### Step 1: Recall the values of sine and cosine for 60 degrees
sin(60) = sqrt(3)/2 and cos(60) = 1/2

Output:
### Step 2: Multiply the values
sin(60) * cos(60) = sqrt(3)/2 * 1/2 = sqrt(3)/4

Next turn output:
### Final Answer
sin(60) * cos(60) = sqrt(3)/4
`

// StopWords mark the start of a reasoning step, compared case-insensitively.
var StopWords = []string{"### step", "### final answer"}

const finalMarker = "### final answer"

var ErrEmptyStep = errors.New("policy produced an empty step")

// LLM asks a chat model for the next reasoning step.
type LLM struct {
	provider    llm.Provider
	model       string
	temperature *float64
	maxTokens   int
}

type Option func(p *LLM)

func WithModel(model string) Option {
	return func(p *LLM) {
		p.model = model
	}
}

func WithTemperature(temperature float64) Option {
	return func(p *LLM) {
		p.temperature = &temperature
	}
}

func WithMaxTokens(tokens int) Option {
	return func(p *LLM) {
		p.maxTokens = tokens
	}
}

func NewLLM(provider llm.Provider, options ...Option) *LLM {
	p := &LLM{provider: provider}
	for _, option := range options {
		option(p)
	}
	return p
}

// NextStep requests a completion and keeps only its first reasoning step.
func (p *LLM) NextStep(ctx context.Context, question string, steps []string) (string, bool, error) {
	resp, err := p.provider.Chat(ctx, &llm.ChatRequest{
		Model:        p.model,
		SystemPrompt: SystemPrompt,
		Messages:     prompt.PolicyMessages(question, steps),
		MaxTokens:    p.maxTokens,
		Temperature:  p.temperature,
	})
	if err != nil {
		return "", false, fmt.Errorf("%s chat: %w", p.provider.Name(), err)
	}

	step, final := ApplyStopWords(resp.Content, StopWords)
	if step == "" {
		return "", false, ErrEmptyStep
	}
	return step, final, nil
}

// ApplyStopWords cuts a completion before the second line that carries a stop
// word, so a model that writes several steps at once yields only the first.
// final reports whether the kept text contains a final answer marker.
func ApplyStopWords(content string, stopWords []string) (step string, final bool) {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	seen := false
	for _, line := range lines {
		if containsAny(strings.ToLower(line), stopWords) {
			if seen {
				break
			}
			seen = true
		}
		kept = append(kept, line)
	}

	step = strings.TrimSpace(strings.Join(kept, "\n"))
	return step, IsFinal(step)
}

// IsFinal reports whether a step carries the final answer marker.
func IsFinal(step string) bool {
	return strings.Contains(strings.ToLower(step), finalMarker)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
