package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeHybrid(t *testing.T) {
	t.Run("关键词命中距离置零并排在最前", func(t *testing.T) {
		vector := []RetrievalResult{
			{Content: "vec-a", Distance: 0.3},
			{Content: "vec-b", Distance: 0.1},
		}
		keyword := []RetrievalResult{
			{Content: "kw-a", Distance: 0.9},
		}
		got := MergeHybrid(vector, keyword, 5)
		assert.Len(t, got, 3)
		assert.Equal(t, "kw-a", got[0].Content)
		assert.Equal(t, 0.0, got[0].Distance)
		assert.Equal(t, "vec-b", got[1].Content)
		assert.Equal(t, "vec-a", got[2].Content)
	})

	t.Run("同一内容只保留向量侧的真实距离", func(t *testing.T) {
		vector := []RetrievalResult{{Content: "dup", Distance: 0.2}}
		keyword := []RetrievalResult{{Content: "dup", Distance: 0.0}}
		got := MergeHybrid(vector, keyword, 5)
		assert.Len(t, got, 1)
		assert.Equal(t, 0.2, got[0].Distance)
	})

	t.Run("向量侧自身去重", func(t *testing.T) {
		vector := []RetrievalResult{
			{Content: "dup", Distance: 0.2},
			{Content: "dup", Distance: 0.5},
		}
		got := MergeHybrid(vector, nil, 5)
		assert.Len(t, got, 1)
		assert.Equal(t, 0.2, got[0].Distance)
	})

	t.Run("截断到 topK", func(t *testing.T) {
		vector := []RetrievalResult{
			{Content: "a", Distance: 0.1},
			{Content: "b", Distance: 0.2},
			{Content: "c", Distance: 0.3},
		}
		got := MergeHybrid(vector, nil, 2)
		assert.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Content)
		assert.Equal(t, "b", got[1].Content)
	})

	t.Run("同距离条目保持入表顺序", func(t *testing.T) {
		keyword := []RetrievalResult{
			{Content: "first"},
			{Content: "second"},
			{Content: "third"},
		}
		got := MergeHybrid(nil, keyword, 5)
		assert.Equal(t, []string{"first", "second", "third"},
			[]string{got[0].Content, got[1].Content, got[2].Content})
	})

	t.Run("两次调用结果一致", func(t *testing.T) {
		vector := []RetrievalResult{
			{Content: "a", Distance: 0.4},
			{Content: "b", Distance: 0.4},
		}
		keyword := []RetrievalResult{{Content: "c"}}
		first := MergeHybrid(vector, keyword, 5)
		second := MergeHybrid(vector, keyword, 5)
		assert.Equal(t, first, second)
	})

	t.Run("topK 非法时回退默认值", func(t *testing.T) {
		vector := make([]RetrievalResult, 0, 8)
		for _, c := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			vector = append(vector, RetrievalResult{Content: c, Distance: 0.5})
		}
		got := MergeHybrid(vector, nil, 0)
		assert.Len(t, got, 5)
	})

	t.Run("两侧均空", func(t *testing.T) {
		assert.Empty(t, MergeHybrid(nil, nil, 5))
	})
}

func TestRenderKnowledgeFallback(t *testing.T) {
	t.Run("罗列召回片段", func(t *testing.T) {
		got := RenderKnowledgeFallback([]RetrievalResult{
			{Content: " first chunk "},
			{Content: "second chunk"},
		})
		assert.Equal(t, "Here is the most relevant information found:\n\n- first chunk\n- second chunk", got)
	})

	t.Run("无召回时返回固定文案", func(t *testing.T) {
		assert.Equal(t, AnswerNoKnowledge, RenderKnowledgeFallback(nil))
	})
}
