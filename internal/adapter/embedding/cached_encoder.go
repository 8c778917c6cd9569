package embedding

import (
	"context"
	"log/slog"

	"petrorag/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEncoder memoizes embeddings in an LRU cache keyed by model version
// and text. Expanded query variants repeat heavily across turns, so the hit
// rate on short sessions is high.
type CachedEncoder struct {
	inner  domain.VectorEncoder
	cache  *lru.Cache[string, []float32]
	logger *slog.Logger
}

func NewCachedEncoder(inner domain.VectorEncoder, size int, logger *slog.Logger) (*CachedEncoder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEncoder{
		inner:  inner,
		cache:  cache,
		logger: logger,
	}, nil
}

func (c *CachedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := c.cache.Get(c.key(text)); ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) > 0 {
		encoded, err := c.inner.Encode(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for j, vec := range encoded {
			out[missIdx[j]] = vec
			c.cache.Add(c.key(missTexts[j]), vec)
		}
	}

	c.logger.Debug("embedding_cache_lookup",
		slog.Int("requested", len(texts)),
		slog.Int("misses", len(missTexts)))

	return out, nil
}

func (c *CachedEncoder) Version() string {
	return c.inner.Version()
}

// key namespaces cache entries by model version so a model swap never serves
// stale vectors.
func (c *CachedEncoder) key(text string) string {
	return c.inner.Version() + "\x00" + text
}

var _ domain.VectorEncoder = (*CachedEncoder)(nil)
