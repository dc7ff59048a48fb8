package domain

import (
	"strings"
	"time"
)

// FuelType is the kind of fuel a trip is costed with.
type FuelType string

const (
	FuelDiesel   FuelType = "diesel"
	FuelGasoline FuelType = "gasoline"
)

// Valid reports whether f is a known fuel type.
func (f FuelType) Valid() bool {
	return f == FuelDiesel || f == FuelGasoline
}

// dieselMarkers are engine descriptor fragments that identify a diesel engine.
var dieselMarkers = []string{"hdi", "dci", "tdi", "multijet"}

// InferFuelType guesses the fuel type from a free-text engine descriptor.
func InferFuelType(engine string) FuelType {
	e := strings.ToLower(engine)
	for _, m := range dieselMarkers {
		if strings.Contains(e, m) {
			return FuelDiesel
		}
	}
	return FuelGasoline
}

// FuelConsumption holds rated consumption in liters per 100 km.
type FuelConsumption struct {
	City     float64  `json:"city"`
	Highway  float64  `json:"highway"`
	Combined float64  `json:"combined"`
	Average  *float64 `json:"average,omitempty"`
}

// Vehicle is an entry of the read-only vehicle catalog.
type Vehicle struct {
	ID              int             `json:"id"`
	Rank            *int            `json:"rank,omitempty"`
	Brand           string          `json:"brand"`
	Model           string          `json:"model"`
	Type            string          `json:"type,omitempty"`
	Class           string          `json:"class,omitempty"`
	Engine          string          `json:"engine"`
	FuelConsumption FuelConsumption `json:"fuel_consumption"`
	Image           string          `json:"image,omitempty"`
}

// DisplayName is "Brand Model".
func (v Vehicle) DisplayName() string {
	return v.Brand + " " + v.Model
}

// DefaultFuelType is the fuel type preselected when the vehicle is chosen.
func (v Vehicle) DefaultFuelType() FuelType {
	return InferFuelType(v.Engine)
}

// FuelPrices are per-liter prices in dinars.
type FuelPrices struct {
	Diesel   float64 `json:"diesel"`
	Gasoline float64 `json:"gasoline"`
}

// For returns the price of the given fuel type.
func (p FuelPrices) For(f FuelType) float64 {
	if f == FuelDiesel {
		return p.Diesel
	}
	return p.Gasoline
}

// Valid reports whether both prices are positive.
func (p FuelPrices) Valid() bool {
	return p.Diesel > 0 && p.Gasoline > 0
}

// PriceQuote is the outcome of a price resolution. Warning is set, and
// LastUpdated holds a fixed date, when the values are the static fallback.
type PriceQuote struct {
	FuelPrices
	LastUpdated string `json:"lastUpdated"`
	Source      string `json:"source,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

// Degraded reports whether the quote carries fallback data.
func (q PriceQuote) Degraded() bool {
	return q.Warning != ""
}

// RouteResult is the best driving route returned by the routing service.
type RouteResult struct {
	TotalDistanceKm float64        `json:"total_distance_km"`
	EncodedGeometry string         `json:"encoded_geometry,omitempty"`
	Path            *GeoLineString `json:"path,omitempty"`
	Provider        string         `json:"provider,omitempty"`
}

// TripCost is derived from a distance, a vehicle and a fuel price. It is never stored.
type TripCost struct {
	DistanceKm      float64  `json:"distance_km"`
	ConsumptionL100 float64  `json:"consumption_l_100km"`
	FuelType        FuelType `json:"fuel_type"`
	PricePerLiter   float64  `json:"price_per_liter"`
	LitersNeeded    float64  `json:"liters_needed"`
	FuelCost        float64  `json:"fuel_cost"`
}

// Receipt summarises a costed trip for printing by the UI shell.
type Receipt struct {
	Number      string          `json:"number"`
	IssuedAt    time.Time       `json:"issued_at"`
	Origin      LocationPoint   `json:"origin"`
	Waypoints   []LocationPoint `json:"waypoints"`
	Destination LocationPoint   `json:"destination"`
	Vehicle     Vehicle         `json:"vehicle"`
	Cost        TripCost        `json:"cost"`
	PricesAsOf  string          `json:"prices_as_of,omitempty"`
}
