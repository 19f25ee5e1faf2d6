package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
)

var _ ports.AdjustmentSink = (*Publisher)(nil)

// Valores por defecto del stream de eventos.
const (
	DefaultSubject = "inventory.adjusted"
	DefaultStream  = "INVENTORY"
	EventType      = "inventory.adjusted"
)

// AdjustmentEvent mensaje publicado por cada ajuste persistido.
type AdjustmentEvent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	PartRef        string    `json:"partRef"`
	Delta          int64     `json:"delta"`
	QuantityBefore int64     `json:"quantityBefore"`
	QuantityAfter  int64     `json:"quantityAfter"`
	User           string    `json:"user"`
}

// NewAdjustmentEvent arma el evento con un ID nuevo (también usado como Nats-Msg-Id).
func NewAdjustmentEvent(rec entity.LogRecord) AdjustmentEvent {
	return AdjustmentEvent{
		ID:             uuid.NewString(),
		Type:           EventType,
		Timestamp:      rec.Timestamp.UTC(),
		PartRef:        rec.PartRef,
		Delta:          rec.Delta,
		QuantityBefore: rec.QuantityBefore,
		QuantityAfter:  rec.QuantityAfter,
		User:           rec.User,
	}
}

// Publisher publica los ajustes en JetStream.
type Publisher struct {
	conn    *natsgo.Conn
	js      natsgo.JetStreamContext
	subject string
}

// NewPublisher conecta, obtiene el contexto JetStream y crea el stream si no existe.
func NewPublisher(url, stream, subject string, opts ...natsgo.Option) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if stream == "" {
		stream = DefaultStream
	}
	nc, err := natsgo.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats: conectar: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats: jetstream: %w", err)
	}
	if err := ensureStream(js, stream, subject); err != nil {
		nc.Close()
		return nil, err
	}
	return &Publisher{conn: nc, js: js, subject: subject}, nil
}

func ensureStream(js natsgo.JetStreamContext, stream, subject string) error {
	_, err := js.StreamInfo(stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, natsgo.ErrStreamNotFound) {
		return fmt.Errorf("nats: consultar stream %s: %w", stream, err)
	}
	if _, err := js.AddStream(&natsgo.StreamConfig{
		Name:     stream,
		Subjects: []string{subject},
		Storage:  natsgo.FileStorage,
	}); err != nil {
		return fmt.Errorf("nats: crear stream %s: %w", stream, err)
	}
	return nil
}

func (p *Publisher) Name() string { return "nats" }

// Record publica el evento del ajuste y espera el ack del stream.
func (p *Publisher) Record(ctx context.Context, rec entity.LogRecord) error {
	if p == nil {
		return errors.New("nats: publisher nil")
	}
	ev := NewAdjustmentEvent(rec)
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("nats: serializar evento: %w", err)
	}
	if _, err := p.js.Publish(p.subject, data, natsgo.Context(ctx), natsgo.MsgId(ev.ID)); err != nil {
		return fmt.Errorf("nats: publicar %s: %w", p.subject, err)
	}
	return nil
}

// Close drena la conexión.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
