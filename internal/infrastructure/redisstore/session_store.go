package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
)

func sessionKey(userID, sid string) string {
	return "user:session:" + userID + ":" + sid
}

func stateKey(state string) string {
	return "oauth:state:" + state
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SessionStore keeps one session hash per signed-in device and one-shot OAuth states.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) SaveState(ctx context.Context, state string, st application.SignInState, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, s.rdb, stateKey(state), st, ttl)
}

func (s *SessionStore) TakeState(ctx context.Context, state string) (application.SignInState, bool, error) {
	var st application.SignInState
	ok, err := helpers.RedisTakeJSON(ctx, s.rdb, stateKey(state), &st)
	return st, ok, err
}

// SaveSession opens sid for u; the user's other sessions are left alone.
func (s *SessionStore) SaveSession(ctx context.Context, u *entity.User, sid string, ttl time.Duration) error {
	key := sessionKey(u.ID, sid)
	fields := map[string]any{
		"user_id":    u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"image_url":  u.ImageURL,
		"sid":        sid,
		"logged_in":  true,
		"created_at": nowRFC3339(),
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) HasSession(ctx context.Context, userID, sid string) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(userID, sid)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, userID, sid string) error {
	return helpers.RedisDel(ctx, s.rdb, sessionKey(userID, sid))
}

var _ application.SessionStore = (*SessionStore)(nil)
