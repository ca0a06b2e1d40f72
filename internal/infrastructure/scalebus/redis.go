package scalebus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// ConnectRedis abre el cliente y verifica la conexión.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	opt.MaxRetries = 3
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisSource se suscribe por patrón (scale/*) al pub/sub de Redis.
type RedisSource struct {
	client  *redis.Client
	pattern string
	log     zerolog.Logger
	now     func() time.Time
}

// NewRedisSource crea la fuente. pattern vacío usa "scale/*".
func NewRedisSource(client *redis.Client, pattern string, log zerolog.Logger) *RedisSource {
	if pattern == "" {
		pattern = TopicPrefix + "*"
	}
	return &RedisSource{client: client, pattern: pattern, log: log, now: time.Now}
}

var _ Source = (*RedisSource)(nil)

// Run entrega lecturas hasta que ctx termine o la suscripción se cierre.
func (s *RedisSource) Run(ctx context.Context, out chan<- entity.ScaleReading) error {
	pubsub := s.client.PSubscribe(ctx, s.pattern)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe %s: %w", s.pattern, err)
	}
	s.log.Info().Str("pattern", s.pattern).Msg("suscrito a balanzas por redis")
	return s.consume(ctx, pubsub.Channel(), out)
}

// consume decodifica los mensajes de ch en orden; los inválidos se descartan.
func (s *RedisSource) consume(ctx context.Context, ch <-chan *redis.Message, out chan<- entity.ScaleReading) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			rd, err := Decode(msg.Channel, []byte(msg.Payload), s.now())
			if err != nil {
				s.log.Warn().Err(err).Str("channel", msg.Channel).Msg("mensaje de balanza inválido")
				continue
			}
			if err := send(ctx, out, rd); err != nil {
				return err
			}
		}
	}
}

// Close cierra el cliente de Redis.
func (s *RedisSource) Close() error {
	return s.client.Close()
}
