// Package prompt renders reasoning traces into chat messages for the policy
// and the verifier.
package prompt

import (
	"fmt"
	"reasoning/llm"
	"strings"
)

// FormatSteps numbers each step as "### Step i:" on its own line. A step that
// already starts with its own marker is not numbered twice.
func FormatSteps(steps []string) string {
	formatted := make([]string, len(steps))
	for i, step := range steps {
		marker := fmt.Sprintf("### Step %d:", i+1)
		cleaned := strings.TrimSpace(strings.ReplaceAll(step, marker, ""))
		formatted[i] = marker + "\n" + cleaned
	}
	return strings.Join(formatted, "\n")
}

// PolicyMessages asks the policy to continue the trace or answer.
func PolicyMessages(question string, steps []string) []llm.Message {
	content := fmt.Sprintf("Question:\n%s\nReasoning:\n%s\n\nContinue reasoning or provide the final answer.",
		question, FormatSteps(steps))
	return []llm.Message{llm.UserMessage(content)}
}

// VerifierMessages presents a finished trace to the judge.
func VerifierMessages(question string, steps []string) []llm.Message {
	content := fmt.Sprintf("Question:\n%s\nReasoning and answer:\n%s", question, FormatSteps(steps))
	return []llm.Message{llm.UserMessage(content)}
}
