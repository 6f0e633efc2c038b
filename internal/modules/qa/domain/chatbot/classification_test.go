package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClassification(t *testing.T) {
	t.Run("精确单词", func(t *testing.T) {
		assert.Equal(t, ClassDatabase, ParseClassification("database"))
		assert.Equal(t, ClassKnowledge, ParseClassification("knowledge"))
		assert.Equal(t, ClassConversational, ParseClassification("conversational"))
		assert.Equal(t, ClassIrrelevant, ParseClassification("irrelevant"))
	})

	t.Run("大小写与前后空白", func(t *testing.T) {
		assert.Equal(t, ClassDatabase, ParseClassification("  DATABASE \n"))
		assert.Equal(t, ClassKnowledge, ParseClassification("Knowledge"))
	})

	t.Run("啰嗦输出按子串命中", func(t *testing.T) {
		assert.Equal(t, ClassDatabase, ParseClassification("This is a database question because it asks about counts."))
		assert.Equal(t, ClassKnowledge, ParseClassification("Category: knowledge."))
	})

	t.Run("多类别同时出现时按固定优先级", func(t *testing.T) {
		assert.Equal(t, ClassDatabase, ParseClassification("could be knowledge or database"))
		assert.Equal(t, ClassKnowledge, ParseClassification("knowledge, maybe conversational"))
		assert.Equal(t, ClassConversational, ParseClassification("conversational or irrelevant"))
	})

	t.Run("未命中时归为 irrelevant", func(t *testing.T) {
		assert.Equal(t, ClassIrrelevant, ParseClassification(""))
		assert.Equal(t, ClassIrrelevant, ParseClassification("I am not sure"))
		assert.Equal(t, ClassIrrelevant, ParseClassification("sql"))
	})
}
