package app

import (
	"go.uber.org/fx"

	"github.com/Alijeyrad/carwash_portal/config"
	"github.com/Alijeyrad/carwash_portal/internal/service/account"
	"github.com/Alijeyrad/carwash_portal/internal/service/appointment"
	"github.com/Alijeyrad/carwash_portal/internal/service/dashboard"
	"github.com/Alijeyrad/carwash_portal/internal/service/session"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
	"github.com/Alijeyrad/carwash_portal/pkg/credentials"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideSessionService,
		ProvideRepository,
		ProvideController,
		ProvideDashboardService,
		ProvideAccountService,
	),
)

func ProvideSessionService(api backend.API, store credentials.Store) session.Service {
	return session.New(api, store)
}

func ProvideRepository(api backend.API, cache appointment.ListCache) appointment.Repository {
	return appointment.NewRepository(api, cache)
}

type ControllerParams struct {
	fx.In

	API       backend.API
	Repo      appointment.Repository
	Auth      authorize.IAuthorization
	Cache     appointment.ListCache
	InFlight  appointment.InFlight
	Publisher appointment.Publisher
}

func ProvideController(p ControllerParams) appointment.Controller {
	return appointment.NewController(appointment.Deps{
		API:       p.API,
		Repo:      p.Repo,
		Auth:      p.Auth,
		Cache:     p.Cache,
		InFlight:  p.InFlight,
		Publisher: p.Publisher,
	})
}

func ProvideDashboardService(api backend.API, repo appointment.Repository, auth authorize.IAuthorization) dashboard.Service {
	return dashboard.New(api, repo, auth)
}

func ProvideAccountService(api backend.API, auth authorize.IAuthorization, cfg *config.Config) account.Service {
	return account.New(api, auth, cfg.Profile.PhoneRegion)
}
