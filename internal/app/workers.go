package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/carwash_portal/internal/service/appointment"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	NC       *nats.Conn `optional:"true"`
	Cache    appointment.ListCache
	Instance InstanceID
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		slog.Info("nats not configured, list cache invalidation stays local")
		return
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s, err := p.NC.Subscribe(appointment.SubjectInvalidated, invalidationWorker(p.Cache, p.Instance))
			if err != nil {
				return err
			}
			sub = s
			slog.Info("invalidation worker subscribed", "subject", appointment.SubjectInvalidated)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if sub == nil {
				return nil
			}
			return sub.Unsubscribe()
		},
	})
}

// invalidationWorker drops cached lists when another portal instance reports
// a mutation. Our own broadcasts are ignored; the mutating request already
// invalidated.
func invalidationWorker(cache appointment.ListCache, self InstanceID) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var inv appointment.Invalidation
		if err := json.Unmarshal(msg.Data, &inv); err != nil {
			slog.Warn("invalidation_worker: bad payload", "err", err)
			return
		}
		if inv.Instance == string(self) {
			return
		}
		if err := cache.Invalidate(context.Background()); err != nil {
			slog.Warn("invalidation_worker: invalidate failed", "kind", inv.Kind, "id", inv.ID, "err", err)
			return
		}
		slog.Debug("invalidation_worker: lists invalidated", "kind", inv.Kind, "id", inv.ID, "from", inv.Instance)
	}
}
