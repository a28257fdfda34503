package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hward/huddle/internal/domain"
)

const presenceTTL = 24 * time.Hour

// Redis implements StateStore on a single redis instance.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects and verifies connectivity before returning.
func NewRedis(ctx context.Context, addr string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("module", "store.redis").Str("addr", addr).Int("db", db).Msg("connected")
	return &Redis{rdb: rdb}, nil
}

func roomKey(room domain.RoomID) string   { return "room:" + string(room) + ":members" }
func presenceKey(id domain.ConnID) string { return "presence:" + string(id) }

const alertsKey = "emergency:alerts"

func (r *Redis) AddRoomMember(ctx context.Context, room domain.RoomID, user domain.UserID) error {
	return r.rdb.SAdd(ctx, roomKey(room), string(user)).Err()
}

func (r *Redis) RemoveRoomMember(ctx context.Context, room domain.RoomID, user domain.UserID) error {
	return r.rdb.SRem(ctx, roomKey(room), string(user)).Err()
}

func (r *Redis) RoomMembers(ctx context.Context, room domain.RoomID) ([]domain.UserID, error) {
	raw, err := r.rdb.SMembers(ctx, roomKey(room)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserID, 0, len(raw))
	for _, v := range raw {
		out = append(out, domain.UserID(v))
	}
	return out, nil
}

func (r *Redis) SetPresence(ctx context.Context, s *domain.Session) error {
	b, err := json.Marshal(map[string]any{
		"userId":      s.UserID,
		"userName":    s.Name,
		"role":        s.Role,
		"roomId":      s.Room,
		"connectedAt": s.ConnectedAt,
	})
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, presenceKey(s.ConnID), b, presenceTTL).Err()
}

func (r *Redis) ClearPresence(ctx context.Context, connID domain.ConnID) error {
	return r.rdb.Del(ctx, presenceKey(connID)).Err()
}

func (r *Redis) PushAlert(ctx context.Context, a *domain.EmergencyAlert) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return r.rdb.LPush(ctx, alertsKey, b).Err()
}

func (r *Redis) Close() error { return r.rdb.Close() }
