package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/carwash_portal/internal/api/http/middleware"
	"github.com/Alijeyrad/carwash_portal/internal/service/account"
	"github.com/Alijeyrad/carwash_portal/internal/service/appointment"
	"github.com/Alijeyrad/carwash_portal/internal/service/dashboard"
	"github.com/Alijeyrad/carwash_portal/internal/service/session"
	"github.com/Alijeyrad/carwash_portal/pkg/authorize"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
)

// failer maps service errors onto responses. It needs the session service
// because a rejected credential ends the visitor's session.
type failer struct {
	sessions session.Service
}

func (f failer) fail(c fiber.Ctx, err error) error {
	var verr *backend.ValidationError
	switch {
	case errors.As(err, &verr):
		return invalid(c, verr.FieldErrors)

	case errors.Is(err, session.ErrInvalidCredentials):
		return unauthorized(c, err.Error(), "")

	case errors.Is(err, backend.ErrAuthExpired):
		actor := middleware.ActorFromFiber(c)
		f.sessions.Expire(c.Context(), actor.VisitorID)
		redirect := middleware.RootPath
		if actor.Role.Valid() {
			redirect = authorize.Require(actor.Role).LoginPath()
		}
		return unauthorized(c, "session expired", redirect)

	case errors.Is(err, appointment.ErrInFlight):
		return conflict(c, err.Error())

	// A claim whose precondition failed also matches ErrNotClaimable; the
	// caller only needs to know the change did not happen.
	case errors.Is(err, backend.ErrMutationFailed):
		return badGateway(c, "the change could not be saved, please try again")

	case errors.Is(err, appointment.ErrNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, backend.ErrNotFound):
		return notFound(c, "not found")

	case errors.Is(err, appointment.ErrForbidden),
		errors.Is(err, appointment.ErrNotClaimedByActor),
		errors.Is(err, dashboard.ErrForbidden),
		errors.Is(err, account.ErrForbidden),
		errors.Is(err, authorize.ErrForbidden):
		return forbidden(c, err.Error())

	case errors.Is(err, appointment.ErrIllegalTransition),
		errors.Is(err, appointment.ErrNotClaimable):
		return conflict(c, err.Error())

	case errors.Is(err, appointment.ErrUnknownKind),
		errors.Is(err, appointment.ErrUnknownStatus),
		errors.Is(err, appointment.ErrUnsupportedList),
		errors.Is(err, dashboard.ErrInvalidRange),
		errors.Is(err, account.ErrNotAnEmployee),
		errors.Is(err, authorize.ErrUnknownRole):
		return badRequest(c, err.Error())

	case errors.Is(err, backend.ErrReadFailed):
		return unavailable(c, "could not load data, please retry")

	case errors.Is(err, backend.ErrMalformedResponse):
		return badGateway(c, "unexpected answer from the backend")
	}

	slog.ErrorContext(c.Context(), "unhandled error", "path", c.Path(), "error", err)
	return internalError(c)
}
