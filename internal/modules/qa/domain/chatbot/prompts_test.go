package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRewritePrompt(t *testing.T) {
	history := []ChatTurn{
		{Role: "user", Content: "how many women survived"},
		{Role: "assistant", Content: "233 female passengers survived."},
	}
	got := BuildRewritePrompt(history, "what about men")
	assert.Contains(t, got, "user: how many women survived")
	assert.Contains(t, got, "assistant: 233 female passengers survived.")
	assert.Contains(t, got, "Follow-up Question: what about men")
	assert.Contains(t, got, "Standalone Question:")
}

func TestBuildKnowledgePrompt(t *testing.T) {
	got := BuildKnowledgePrompt([]RetrievalResult{
		{Content: "chunk one"},
		{Content: "chunk two"},
	}, "what is the leave policy")
	assert.Contains(t, got, "chunk one\n\nchunk two")
	assert.Contains(t, got, "what is the leave policy")
}

func TestBuildClassifyPrompt(t *testing.T) {
	got := BuildClassifyPrompt("hello")
	assert.Contains(t, got, "Return ONLY one word.")
	assert.Contains(t, got, "Question:\nhello")
}
