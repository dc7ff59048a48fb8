package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
)

// CreateSessionHandler opens a planning session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := deps.Sessions.Create(c.UserContext())
		c.Location("/v1/sessions/" + st.ID)
		return c.Status(fiber.StatusCreated).JSON(st)
	}
}

// GetSessionHandler returns the current session state.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := deps.Sessions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(st)
	}
}

// DeleteSessionHandler discards a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SessionPointOp is a session operation that places a point: SetOrigin,
// SetDestination or AddWaypoint.
type SessionPointOp func(ctx context.Context, id string, p domain.LocationPoint) (*usecases.SessionState, error)

// SessionPointHandler applies a LocationInput body with op.
func SessionPointHandler(op SessionPointOp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in LocationInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		lp, msg := in.resolve()
		if msg != "" {
			return errBadRequest(c, msg)
		}
		st, err := op(c.UserContext(), c.Params("id"), lp)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(st)
	}
}

// RemoveWaypointHandler drops the waypoint at :index.
func RemoveWaypointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		index, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "waypoint index must be an integer")
		}
		st, err := deps.Sessions.RemoveWaypoint(c.UserContext(), c.Params("id"), index)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(st)
	}
}

// ClearPointsHandler removes origin, destination and waypoints.
func ClearPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := deps.Sessions.ClearPoints(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(st)
	}
}

// SelectVehicleHandler picks the session vehicle.
func SelectVehicleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			VehicleID int `json:"vehicle_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.VehicleID <= 0 {
			return errBadRequest(c, "vehicle_id must be a positive integer")
		}
		st, err := deps.Sessions.SelectVehicle(c.UserContext(), c.Params("id"), body.VehicleID)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(st)
	}
}

// SetFuelTypeHandler overrides the inferred fuel type.
func SetFuelTypeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			FuelType domain.FuelType `json:"fuel_type"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		st, err := deps.Sessions.SetFuelType(c.UserContext(), c.Params("id"), body.FuelType)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(st)
	}
}

// ReceiptHandler issues a receipt for the session trip.
func ReceiptHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := deps.Sessions.Receipt(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(r)
	}
}
