package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/carwash_portal/config"
	"github.com/Alijeyrad/carwash_portal/internal/api/http/router"
	"github.com/Alijeyrad/carwash_portal/internal/app"
)

// Start runs the portal until it receives a stop signal.
func Start(cfg *config.Config, timeout time.Duration, opts ...fx.Option) {
	opts = append([]fx.Option{
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// fiber.App is only constructed (and its OnStart hook registered)
		// when something depends on it.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
	}, opts...)

	fx.New(opts...).Run()
}
