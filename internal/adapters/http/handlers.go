package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
	"github.com/samirrijal/tunitrip/internal/pkg/geospatial"
	"github.com/samirrijal/tunitrip/internal/pkg/metrics"
)

// LocationInput selects a point either by gazetteer city or by coordinates.
type LocationInput struct {
	City string   `json:"city,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
	Name string   `json:"name,omitempty"`
}

// resolve turns the input into a LocationPoint. Coordinates without a name
// become a custom location.
func (in LocationInput) resolve() (domain.LocationPoint, string) {
	if in.City != "" {
		city, ok := domain.FindCity(in.City)
		if !ok {
			return domain.LocationPoint{}, "unknown city: " + in.City
		}
		return city.Point(), ""
	}
	if in.Lat == nil || in.Lon == nil {
		return domain.LocationPoint{}, "either city or lat and lon are required"
	}
	p := domain.GeoPoint{Lat: *in.Lat, Lon: *in.Lon}
	if !p.Valid() {
		return domain.LocationPoint{}, "lat must be in [-90, 90] and lon in [-180, 180]"
	}
	if in.Name != "" {
		return domain.LocationPoint{Name: in.Name, Coords: p}, ""
	}
	return domain.CustomLocation(p), ""
}

// ListCitiesHandler returns the city gazetteer.
func ListCitiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(domain.Cities)
	}
}

// ListVehiclesHandler lists the catalog, or searches it when q is given.
func ListVehiclesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			vehicles, err := deps.Vehicles.Search(ctx, q, c.QueryInt("limit", 20))
			if err != nil {
				return errFrom(c, err)
			}
			if vehicles == nil {
				vehicles = []domain.Vehicle{}
			}
			return c.JSON(vehicles)
		}

		vehicles, err := deps.Vehicles.List(ctx)
		if err != nil {
			return errFrom(c, err)
		}

		pg := readPagination(c, len(vehicles), 50, 500)
		start, end := pg.window()
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: vehicles[start:end], Pagination: pg})
	}
}

// GetVehicleHandler returns one catalog vehicle.
func GetVehicleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "vehicle id must be a positive integer")
		}
		v, err := deps.Vehicles.GetByID(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(v)
	}
}

// FuelPricesHandler resolves current prices. It always answers 200; a
// fallback quote carries a warning.
func FuelPricesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Prices.Resolve(c.UserContext()))
	}
}

type routeRequest struct {
	Points []LocationInput `json:"points"`
}

type routeResponse struct {
	*domain.RouteResult
	StraightLineKm float64 `json:"straight_line_km"`
}

// RouteHandler fetches the road route through the given points in order.
// The body is null when the road distance is unavailable.
func RouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req routeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Points) < 2 {
			return errBadRequest(c, "at least two points are required")
		}

		points := make([]domain.GeoPoint, len(req.Points))
		for i, in := range req.Points {
			lp, msg := in.resolve()
			if msg != "" {
				return errBadRequest(c, msg)
			}
			points[i] = lp.Coords
		}

		res := deps.Routes.FetchRoute(c.UserContext(), points)
		if res == nil {
			return c.JSON(nil)
		}

		var straight float64
		for i := 1; i < len(points); i++ {
			straight += points[i-1].DistanceKm(points[i])
		}
		return c.JSON(routeResponse{RouteResult: res, StraightLineKm: straight})
	}
}

type quoteRequest struct {
	DistanceKm float64            `json:"distance_km"`
	VehicleID  int                `json:"vehicle_id"`
	FuelType   domain.FuelType    `json:"fuel_type,omitempty"`
	Prices     *domain.FuelPrices `json:"prices,omitempty"`
}

// QuoteHandler costs a trip. Without explicit prices the live prices are
// resolved. The body is null when the inputs do not allow a cost.
func QuoteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req quoteRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.FuelType != "" && !req.FuelType.Valid() {
			return errBadRequest(c, usecases.ErrInvalidFuelType.Error())
		}
		if req.Prices != nil && !req.Prices.Valid() {
			return errBadRequest(c, "prices must be positive")
		}

		ctx := c.UserContext()
		v, err := deps.Vehicles.GetByID(ctx, req.VehicleID)
		if err != nil {
			return errFrom(c, err)
		}

		var prices domain.FuelPrices
		if req.Prices != nil {
			prices = *req.Prices
		} else {
			prices = deps.Prices.Resolve(ctx).FuelPrices
		}

		cost := usecases.ComputeTripCost(req.DistanceKm, v, req.FuelType, prices)
		if cost != nil {
			metrics.QuotesComputed.WithLabelValues(string(cost.FuelType)).Inc()
		}
		return c.JSON(cost)
	}
}

type decodeRequest struct {
	Encoded string `json:"encoded"`
}

type decodeResponse struct {
	Points  [][2]float64   `json:"points"`
	Bounds  *domain.Bounds `json:"bounds,omitempty"`
	Warning string         `json:"warning,omitempty"`
}

// DecodePolylineHandler decodes an encoded polyline into [lat, lon] pairs.
// Malformed input yields an empty list and a warning rather than an error.
func DecodePolylineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req decodeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		pts, err := geospatial.DecodePolyline(req.Encoded)
		if err != nil {
			return c.JSON(decodeResponse{Points: [][2]float64{}, Warning: err.Error()})
		}

		resp := decodeResponse{Points: pts}
		if len(pts) >= 2 {
			minLat, minLon, maxLat, maxLon := geospatial.PathBounds(pts)
			resp.Bounds = &domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
		}
		return c.JSON(resp)
	}
}
