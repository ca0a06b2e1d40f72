// Package scalebus conecta las balanzas físicas con el ScaleRouter.
// Las pasarelas publican JSON en el tópico scale/<id>; los adaptadores de Redis y
// Kafka decodifican cada mensaje y lo entregan por canal en orden de llegada.
package scalebus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// TopicPrefix prefijo de tópicos de balanza.
const TopicPrefix = "scale/"

// Source entrega lecturas de balanza hasta que ctx termine.
type Source interface {
	Run(ctx context.Context, out chan<- entity.ScaleReading) error
	Close() error
}

// payload formato publicado por la pasarela de balanzas.
type payload struct {
	Weight   decimal.Decimal `json:"weight"`
	ScaleID  string          `json:"scale_id"`
	Unit     string          `json:"unit"`
	Stable   bool            `json:"stable"`
	ErrorMsg string          `json:"error_msg"`
}

// Decode convierte un mensaje en lectura. El id de balanza sale del tópico
// (scale/<id>) y, si no, del campo scale_id.
func Decode(topic string, body []byte, receivedAt time.Time) (entity.ScaleReading, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return entity.ScaleReading{}, fmt.Errorf("%w: payload de balanza: %v", domain.ErrInvalidInput, err)
	}
	id := strings.TrimPrefix(topic, TopicPrefix)
	if id == "" || id == topic {
		id = p.ScaleID
	}
	if id == "" {
		return entity.ScaleReading{}, fmt.Errorf("%w: lectura sin scale_id", domain.ErrInvalidInput)
	}
	return entity.ScaleReading{
		ScaleID:    id,
		Weight:     p.Weight,
		Unit:       p.Unit,
		Stable:     p.Stable,
		Error:      p.ErrorMsg != "",
		ErrorMsg:   p.ErrorMsg,
		ReceivedAt: receivedAt,
	}, nil
}

// send entrega la lectura o abandona si ctx termina.
func send(ctx context.Context, out chan<- entity.ScaleReading, rd entity.ScaleReading) error {
	select {
	case out <- rd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
