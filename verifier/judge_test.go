package verifier

import (
	"context"
	"errors"
	"reasoning/llm"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	content  string
	err      error
	requests []*llm.ChatRequest
}

func (p *fakeProvider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatResponse{Content: p.content}, nil
}

func (p *fakeProvider) Name() string { return "fake" }

func TestParseScore(t *testing.T) {
	t.Run("reads the first score line", func(t *testing.T) {
		score, err := ParseScore("Score: 7\nReason: sound.\nScore: 2")

		require.NoError(t, err)
		require.Equal(t, 7, score)
	})

	t.Run("accepts negative scores and surrounding whitespace", func(t *testing.T) {
		score, err := ParseScore("Here is my verdict.\n  Score:   -4  \nReason: wrong sum")

		require.NoError(t, err)
		require.Equal(t, -4, score)
	})

	t.Run("missing score line is malformed", func(t *testing.T) {
		_, err := ParseScore("Reason: looks fine")

		require.ErrorIs(t, err, ErrMalformedScore)
	})

	t.Run("non-integer score is malformed", func(t *testing.T) {
		for _, content := range []string{"Score: 7.5", "Score: high", "Score:"} {
			_, err := ParseScore(content)

			require.ErrorIs(t, err, ErrMalformedScore, "Content %q should not parse", content)
		}
	})
}

func TestJudgeScore(t *testing.T) {
	t.Run("sends the trace and parses the verdict", func(t *testing.T) {
		provider := &fakeProvider{content: "Score: 9\nReason: correct"}
		j := NewJudge(provider, WithModel("judge"), WithMaxTokens(64))

		score, err := j.Score(context.Background(), "2+2?", []string{"### Final Answer\n4"})

		require.NoError(t, err)
		require.Equal(t, 9.0, score)
		require.Len(t, provider.requests, 1)
		req := provider.requests[0]
		require.Equal(t, "judge", req.Model)
		require.Equal(t, 64, req.MaxTokens)
		require.Equal(t, SystemPrompt, req.SystemPrompt)
		require.Equal(t, "Question:\n2+2?\nReasoning and answer:\n### Step 1:\n### Final Answer\n4", req.Messages[0].Content)
	})

	t.Run("malformed verdict is an error", func(t *testing.T) {
		_, err := NewJudge(&fakeProvider{content: "I think it is right"}).Score(context.Background(), "q", nil)

		require.ErrorIs(t, err, ErrMalformedScore)
	})

	t.Run("provider failure is returned", func(t *testing.T) {
		failure := errors.New("timeout")

		_, err := NewJudge(&fakeProvider{err: failure}).Score(context.Background(), "q", nil)

		require.ErrorIs(t, err, failure)
	})
}

func TestConstant(t *testing.T) {
	score, err := Constant(3.5).Score(context.Background(), "q", []string{"a"})
	require.NoError(t, err)
	require.Equal(t, 3.5, score)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Constant(1).Score(ctx, "q", nil)
	require.ErrorIs(t, err, context.Canceled)
}
