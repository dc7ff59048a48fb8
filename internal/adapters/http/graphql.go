package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
		},
	})

	consumptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FuelConsumption",
		Fields: graphql.Fields{
			"city":     &graphql.Field{Type: graphql.Float},
			"highway":  &graphql.Field{Type: graphql.Float},
			"combined": &graphql.Field{Type: graphql.Float},
			"average":  &graphql.Field{Type: graphql.Float},
		},
	})

	vehicleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Vehicle",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.Int},
			"rank":             &graphql.Field{Type: graphql.Int},
			"brand":            &graphql.Field{Type: graphql.String},
			"model":            &graphql.Field{Type: graphql.String},
			"type":             &graphql.Field{Type: graphql.String},
			"class":            &graphql.Field{Type: graphql.String},
			"engine":           &graphql.Field{Type: graphql.String},
			"image":            &graphql.Field{Type: graphql.String},
			"fuel_consumption": &graphql.Field{Type: consumptionType},
			"default_fuel_type": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(domain.Vehicle); ok {
						return string(v.DefaultFuelType()), nil
					}
					if v, ok := p.Source.(*domain.Vehicle); ok {
						return string(v.DefaultFuelType()), nil
					}
					return nil, nil
				},
			},
		},
	})

	priceQuoteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FuelPrices",
		Fields: graphql.Fields{
			"diesel":      &graphql.Field{Type: graphql.Float},
			"gasoline":    &graphql.Field{Type: graphql.Float},
			"lastUpdated": &graphql.Field{Type: graphql.String},
			"source":      &graphql.Field{Type: graphql.String},
			"warning":     &graphql.Field{Type: graphql.String},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"total_distance_km": &graphql.Field{Type: graphql.Float},
			"encoded_geometry":  &graphql.Field{Type: graphql.String},
			"provider":          &graphql.Field{Type: graphql.String},
			"path": &graphql.Field{
				Type: graphql.NewList(geoPointType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, ok := p.Source.(*domain.RouteResult)
					if !ok || r.Path == nil {
						return nil, nil
					}
					return r.Path.Coordinates, nil
				},
			},
		},
	})

	tripCostType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TripCost",
		Fields: graphql.Fields{
			"distance_km":         &graphql.Field{Type: graphql.Float},
			"consumption_l_100km": &graphql.Field{Type: graphql.Float},
			"fuel_type":           &graphql.Field{Type: graphql.String},
			"price_per_liter":     &graphql.Field{Type: graphql.Float},
			"liters_needed":       &graphql.Field{Type: graphql.Float},
			"fuel_cost":           &graphql.Field{Type: graphql.Float},
		},
	})

	pointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "Cities offered in the picker",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return domain.Cities, nil
				},
			},
			"vehicles": &graphql.Field{
				Type:        graphql.NewList(vehicleType),
				Description: "List the vehicle catalog, or search it by brand, model or engine",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.String},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if q, _ := p.Args["query"].(string); q != "" {
						return deps.Vehicles.Search(p.Context, q, p.Args["limit"].(int))
					}
					return deps.Vehicles.List(p.Context)
				},
			},
			"vehicle": &graphql.Field{
				Type:        vehicleType,
				Description: "Get a vehicle by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Vehicles.GetByID(p.Context, p.Args["id"].(int))
				},
			},
			"fuelPrices": &graphql.Field{
				Type:        priceQuoteType,
				Description: "Current fuel prices in TND per liter",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := deps.Prices.Resolve(p.Context)
					return map[string]interface{}{
						"diesel":      q.Diesel,
						"gasoline":    q.Gasoline,
						"lastUpdated": q.LastUpdated,
						"source":      q.Source,
						"warning":     q.Warning,
					}, nil
				},
			},
			"route": &graphql.Field{
				Type:        routeType,
				Description: "Road route through the points in order; null when unavailable",
				Args: graphql.FieldConfigArgument{
					"points": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(pointInput)))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					points, err := pointsArg(p.Args["points"])
					if err != nil {
						return nil, err
					}
					res := deps.Routes.FetchRoute(p.Context, points)
					if res == nil {
						return nil, nil
					}
					return res, nil
				},
			},
			"quote": &graphql.Field{
				Type:        tripCostType,
				Description: "Fuel cost of a trip; live prices unless diesel and gasoline are given",
				Args: graphql.FieldConfigArgument{
					"distance_km": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"vehicle_id":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"fuel_type":   &graphql.ArgumentConfig{Type: graphql.String},
					"diesel":      &graphql.ArgumentConfig{Type: graphql.Float},
					"gasoline":    &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ft, _ := p.Args["fuel_type"].(string)
					if ft != "" && !domain.FuelType(ft).Valid() {
						return nil, usecases.ErrInvalidFuelType
					}
					v, err := deps.Vehicles.GetByID(p.Context, p.Args["vehicle_id"].(int))
					if err != nil {
						return nil, err
					}

					d, dok := p.Args["diesel"].(float64)
					g, gok := p.Args["gasoline"].(float64)
					prices := domain.FuelPrices{Diesel: d, Gasoline: g}
					if !dok || !gok {
						prices = deps.Prices.Resolve(p.Context).FuelPrices
					}

					cost := usecases.ComputeTripCost(p.Args["distance_km"].(float64), v, domain.FuelType(ft), prices)
					if cost == nil {
						return nil, nil
					}
					return cost, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func pointsArg(raw interface{}) ([]domain.GeoPoint, error) {
	list, ok := raw.([]interface{})
	if !ok || len(list) < 2 {
		return nil, errors.New("at least two points are required")
	}
	points := make([]domain.GeoPoint, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("point %d: invalid", i)
		}
		lat, _ := m["lat"].(float64)
		lon, _ := m["lon"].(float64)
		points[i] = domain.GeoPoint{Lat: lat, Lon: lon}
		if !points[i].Valid() {
			return nil, fmt.Errorf("point %d: out of range", i)
		}
	}
	return points, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
