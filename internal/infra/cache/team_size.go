package cache

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

var teamSizeKey = []byte("team_size:user")

type RoleCounter interface {
	CountByRole(ctx context.Context, role entity.Role) (int, error)
}

// TeamSizeCache guarda a contagem de contas role=user usada nas metas de
// team leader e admin. ttl <= 0 desliga o cache.
type TeamSizeCache struct {
	counter RoleCounter
	cache   *freecache.Cache
	ttl     int
	logger  zerolog.Logger
}

func NewTeamSizeCache(counter RoleCounter, sizeMB int, ttl time.Duration, logger zerolog.Logger) *TeamSizeCache {
	c := &TeamSizeCache{
		counter: counter,
		ttl:     int(ttl.Seconds()),
		logger:  logger.With().Str("component", "team_size_cache").Logger(),
	}
	if sizeMB > 0 && c.ttl > 0 {
		// freecache impõe um mínimo de 512KB
		c.cache = freecache.NewCache(sizeMB * 1024 * 1024)
	}
	return c
}

func (c *TeamSizeCache) TeamSize(ctx context.Context) (int, error) {
	if c.cache != nil {
		if val, err := c.cache.Get(teamSizeKey); err == nil && len(val) == 8 {
			return int(binary.BigEndian.Uint64(val)), nil
		}
	}

	n, err := c.counter.CountByRole(ctx, entity.RoleUser)
	if err != nil {
		return 0, err
	}

	if c.cache != nil {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(n))
		if err := c.cache.Set(teamSizeKey, buf, c.ttl); err != nil {
			c.logger.Warn().Err(err).Msg("failed to cache team size")
		}
	}
	return n, nil
}

// Invalidate é chamado quando um papel muda.
func (c *TeamSizeCache) Invalidate() {
	if c.cache != nil {
		c.cache.Del(teamSizeKey)
	}
}
