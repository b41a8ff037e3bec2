// Package cache guarda resumos do dashboard em Redis com TTL curto. Falhas de
// cache nunca propagam: miss e erro são equivalentes para o chamador.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vendalink/vendalink-api/internal/application/analytics"
	"github.com/vendalink/vendalink-api/internal/application/dto"
)

var _ analytics.SummaryCache = (*DashboardCache)(nil)

// DashboardCache cache de resumos do dashboard por (empresa, loja, período).
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDashboardCache(client *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{client: client, ttl: ttl}
}

func cacheKey(companyID, storeID string, days int) string {
	if storeID == "" {
		storeID = "all"
	}
	return fmt.Sprintf("vendalink:dashboard:%s:%s:%d", companyID, storeID, days)
}

func (c *DashboardCache) Get(ctx context.Context, companyID, storeID string, days int) (*dto.DashboardDTO, bool) {
	raw, err := c.client.Get(ctx, cacheKey(companyID, storeID, days)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("dashboard cache: falha na leitura")
		}
		return nil, false
	}
	var summary dto.DashboardDTO
	if err := json.Unmarshal(raw, &summary); err != nil {
		log.Warn().Err(err).Msg("dashboard cache: payload inválido")
		return nil, false
	}
	return &summary, true
}

func (c *DashboardCache) Set(ctx context.Context, companyID, storeID string, days int, summary *dto.DashboardDTO) {
	raw, err := json.Marshal(summary)
	if err != nil {
		log.Warn().Err(err).Msg("dashboard cache: falha ao serializar")
		return
	}
	if err := c.client.Set(ctx, cacheKey(companyID, storeID, days), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("dashboard cache: falha na escrita")
	}
}
