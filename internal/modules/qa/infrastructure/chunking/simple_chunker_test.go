package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleChunker_Chunk(t *testing.T) {
	t.Run("不超过切片大小时整体返回", func(t *testing.T) {
		c := NewSimpleChunker(10, 2)
		got := c.Chunk("short")
		assert.Equal(t, []string{"short"}, got)
	})

	t.Run("按步长切分并带重叠", func(t *testing.T) {
		c := NewSimpleChunker(4, 1)
		got := c.Chunk("abcdefgh")
		// step = 3: [abcd] [defg] [gh]
		assert.Equal(t, []string{"abcd", "defg", "gh"}, got)
	})

	t.Run("多字节字符不被截断", func(t *testing.T) {
		c := NewSimpleChunker(3, 0)
		got := c.Chunk("你好世界再见")
		assert.Equal(t, []string{"你好世", "界再见"}, got)
		for _, chunk := range got {
			assert.True(t, len([]rune(chunk)) <= 3)
		}
	})

	t.Run("空文本", func(t *testing.T) {
		c := NewSimpleChunker(10, 2)
		assert.Empty(t, c.Chunk(""))
	})

	t.Run("重叠不小于大小时自动收缩", func(t *testing.T) {
		c := NewSimpleChunker(4, 10)
		assert.Equal(t, 2, c.ChunkOverlap)
		got := c.Chunk("abcdefgh")
		assert.NotEmpty(t, got)
	})
}

func TestSimpleChunker_ChunkDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("保留元数据并补充 chunk_index", func(t *testing.T) {
		c := NewSimpleChunker(4, 0)
		docs := []*schema.Document{
			{Content: "abcdefgh", MetaData: map[string]any{"source": "handbook"}},
		}
		got, err := c.ChunkDocuments(ctx, docs)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "handbook", got[0].MetaData["source"])
		assert.Equal(t, 0, got[0].MetaData["chunk_index"])
		assert.Equal(t, 1, got[1].MetaData["chunk_index"])
	})

	t.Run("空输入", func(t *testing.T) {
		c := NewSimpleChunker(4, 0)
		got, err := c.ChunkDocuments(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("递归切片优先按句子边界断开", func(t *testing.T) {
		c := NewRecursiveChunker(40, 0)
		text := strings.Repeat("This is a sentence. ", 10)
		got, err := c.ChunkDocuments(ctx, []*schema.Document{{Content: text}})
		require.NoError(t, err)
		assert.Greater(t, len(got), 1)
		for _, d := range got {
			assert.NotEmpty(t, d.Content)
		}
	})
}
