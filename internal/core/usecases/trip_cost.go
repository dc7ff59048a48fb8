package usecases

import "github.com/samirrijal/tunitrip/internal/core/domain"

// ComputeTripCost prices a trip from the vehicle's combined consumption.
//
//	litersNeeded = distanceKm * combined / 100
//	fuelCost     = litersNeeded * price(fuelType)
//
// No rounding is applied. It returns nil when there is nothing to price: no
// vehicle, no positive distance, an unknown fuel type or no positive price
// for it. An empty fuelType
// falls back to the type inferred from the vehicle's engine.
func ComputeTripCost(distanceKm float64, vehicle *domain.Vehicle, fuelType domain.FuelType, prices domain.FuelPrices) *domain.TripCost {
	if vehicle == nil || !(distanceKm > 0) {
		return nil
	}
	if fuelType == "" {
		fuelType = vehicle.DefaultFuelType()
	}
	if !fuelType.Valid() {
		return nil
	}

	price := prices.For(fuelType)
	if !(price > 0) {
		return nil
	}

	consumption := vehicle.FuelConsumption.Combined
	liters := distanceKm * consumption / 100

	return &domain.TripCost{
		DistanceKm:      distanceKm,
		ConsumptionL100: consumption,
		FuelType:        fuelType,
		PricePerLiter:   price,
		LitersNeeded:    liters,
		FuelCost:        liters * price,
	}
}
