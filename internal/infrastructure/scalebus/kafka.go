package scalebus

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// KafkaConfig configuración del consumidor de balanzas.
type KafkaConfig struct {
	Brokers string // separados por coma
	Topic   string
	GroupID string
}

// messageReader lo que KafkaSource usa de *kafka.Reader.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaSource lee lecturas de un tópico Kafka; la key del mensaje es el id de balanza.
type KafkaSource struct {
	reader messageReader
	topic  string
	retry  time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewKafkaSource crea el lector. Empieza en el último offset: lecturas viejas no sirven.
func NewKafkaSource(cfg KafkaConfig, log zerolog.Logger) *KafkaSource {
	var brokers []string
	for _, b := range strings.Split(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    1e6,
		MaxWait:     500 * time.Millisecond,
	})
	return &KafkaSource{reader: reader, topic: cfg.Topic, retry: time.Second, log: log, now: time.Now}
}

var _ Source = (*KafkaSource)(nil)

// Run entrega lecturas hasta que ctx termine.
func (s *KafkaSource) Run(ctx context.Context, out chan<- entity.ScaleReading) error {
	s.log.Info().Str("topic", s.topic).Msg("consumiendo balanzas por kafka")
	for {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			s.log.Warn().Err(err).Msg("error leyendo kafka")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retry):
			}
			continue
		}
		topic := msg.Topic
		if len(msg.Key) > 0 {
			topic = TopicPrefix + string(msg.Key)
		}
		rd, err := Decode(topic, msg.Value, s.now())
		if err != nil {
			s.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("mensaje de balanza inválido")
			continue
		}
		if err := send(ctx, out, rd); err != nil {
			return err
		}
	}
}

// Close cierra el lector.
func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
