package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"SupportDesk/internal/entity"
)

var ErrSessionNotFound = errors.New("session not found")

// ISessionStore keeps the per-conversation dialogue state, keyed by
// conversation id. Callers serialize turns for a given conversation.
type ISessionStore interface {
	GetSession(ctx context.Context, conversationID string) (entity.DialogueSession, error)
	SaveSession(ctx context.Context, session entity.DialogueSession) error
	DeleteSession(ctx context.Context, conversationID string) error
}

type sessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

const defaultSessionTTLHours = 24

func New() ISessionStore {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	ttlHours, _ := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS"))
	if ttlHours <= 0 {
		ttlHours = defaultSessionTTLHours
	}

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &sessionStore{
		client: client,
		ttl:    time.Duration(ttlHours) * time.Hour,
	}
}

func sessionKey(conversationID string) string {
	return "dialogue:session:" + conversationID
}

func (s *sessionStore) GetSession(ctx context.Context, conversationID string) (entity.DialogueSession, error) {
	val, err := s.client.Get(ctx, sessionKey(conversationID)).Result()
	if errors.Is(err, redis.Nil) {
		return entity.DialogueSession{}, ErrSessionNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting session %s: %v", conversationID, err))
		return entity.DialogueSession{}, err
	}

	var session entity.DialogueSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		logrus.Error(fmt.Sprintf("Error decoding session %s: %v", conversationID, err))
		return entity.DialogueSession{}, err
	}

	return session, nil
}

func (s *sessionStore) SaveSession(ctx context.Context, session entity.DialogueSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		logrus.Error(fmt.Sprintf("Error encoding session %s: %v", session.ID, err))
		return err
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), payload, s.ttl).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error saving session %s: %v", session.ID, err))
		return err
	}

	return nil
}

func (s *sessionStore) DeleteSession(ctx context.Context, conversationID string) error {
	if _, err := s.client.Del(ctx, sessionKey(conversationID)).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Error deleting session %s: %v", conversationID, err))
		return err
	}

	return nil
}
