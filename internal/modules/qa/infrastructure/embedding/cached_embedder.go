package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"DataLink/pkg/zlog"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedEmbedder 给底层向量器套一层 Redis 读穿缓存。
// 缓存读写失败只记日志不报错，退化为直连向量器。
type CachedEmbedder struct {
	inner embedding.Embedder
	rdb   *redis.Client
	model string
	ttl   time.Duration
}

func NewCachedEmbedder(inner embedding.Embedder, rdb *redis.Client, model string, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedEmbedder{inner: inner, rdb: rdb, model: model, ttl: ttl}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "datalink:embed:" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if c.rdb == nil {
		return c.inner.EmbedStrings(ctx, texts, opts...)
	}

	result := make([][]float64, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		raw, err := c.rdb.Get(ctx, c.cacheKey(text)).Bytes()
		if err == nil {
			var vec []float64
			if jerr := json.Unmarshal(raw, &vec); jerr == nil && len(vec) > 0 {
				result[i] = vec
				continue
			}
		} else if err != redis.Nil {
			zlog.Warn("嵌入缓存读取失败", zap.Error(err))
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return result, nil
	}

	vecs, err := c.inner.EmbedStrings(ctx, missTexts, opts...)
	if err != nil {
		return nil, err
	}

	for k, idx := range missIdx {
		if k >= len(vecs) {
			break
		}
		result[idx] = vecs[k]
		if raw, jerr := json.Marshal(vecs[k]); jerr == nil {
			if serr := c.rdb.Set(ctx, c.cacheKey(missTexts[k]), raw, c.ttl).Err(); serr != nil {
				zlog.Warn("嵌入缓存写入失败", zap.Error(serr))
			}
		}
	}
	return result, nil
}

var _ embedding.Embedder = (*CachedEmbedder)(nil)
