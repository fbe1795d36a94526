package hub

import (
	"context"
	"encoding/json"

	"sacred_computing/internal/model"
	redisSvc "sacred_computing/internal/service/redis"
	"sacred_computing/internal/utils/log"

	"go.uber.org/zap"
)

const historyKey = "broadcast:history"

type (
	// History keeps the most recent broadcasts in Redis so a subscriber
	// joining mid-session still sees what the field has been doing.
	// Everything is best-effort: Redis being down never breaks fan-out.
	History struct {
		redis *redisSvc.RedisService
		depth int64
	}
)

func NewHistory(redis *redisSvc.RedisService, depth int64) *History {
	return &History{
		redis: redis,
		depth: depth,
	}
}

func (h *History) Record(ctx context.Context, msg *model.BroadcastMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("marshal history entry failed", zap.Error(err))
		return
	}
	if err := h.redis.RPush(ctx, historyKey, data); err != nil {
		log.Warn("push history entry failed", zap.Error(err))
		return
	}
	if err := h.redis.LTrim(ctx, historyKey, -h.depth, -1); err != nil {
		log.Warn("trim history failed", zap.Error(err))
	}
}

func (h *History) Recent(ctx context.Context) ([]*model.BroadcastMessage, error) {
	vals, err := h.redis.LRange(ctx, historyKey)
	if err != nil {
		return nil, err
	}

	var res []*model.BroadcastMessage
	for _, v := range vals {
		var m model.BroadcastMessage
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			log.Warn("unmarshal history entry failed", zap.Error(err))
			continue
		}
		res = append(res, &m)
	}
	return res, nil
}
