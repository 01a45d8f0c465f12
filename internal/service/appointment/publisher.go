package appointment

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

const SubjectInvalidated = "carwash.appointments.invalidated"

// Invalidation is broadcast after every successful mutation so that other
// portal instances drop their cached lists.
type Invalidation struct {
	Instance string `json:"instance"`
	Kind     Kind   `json:"kind"`
	ID       int64  `json:"id"`
}

type Publisher interface {
	Publish(ctx context.Context, key Key)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Key) {}

type NatsPublisher struct {
	nc       *nats.Conn
	instance string
}

func NewNatsPublisher(nc *nats.Conn, instance string) *NatsPublisher {
	return &NatsPublisher{nc: nc, instance: instance}
}

func (p *NatsPublisher) Publish(ctx context.Context, key Key) {
	data, err := json.Marshal(Invalidation{Instance: p.instance, Kind: key.Kind, ID: key.ID})
	if err != nil {
		return
	}
	if err := p.nc.Publish(SubjectInvalidated, data); err != nil {
		slog.WarnContext(ctx, "publish invalidation failed", "key", key.String(), "error", err)
	}
}
