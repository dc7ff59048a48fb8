package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/pkg/metrics"
)

const vehicleCacheTTL = 10 * time.Minute

// VehicleService exposes the read-only vehicle catalog.
type VehicleService struct {
	vehicles ports.VehicleRepository
	cache    ports.CacheService
}

// NewVehicleService creates a new VehicleService. cache may be nil.
func NewVehicleService(vehicles ports.VehicleRepository, cache ports.CacheService) *VehicleService {
	return &VehicleService{vehicles: vehicles, cache: cache}
}

// List returns the whole catalog.
func (s *VehicleService) List(ctx context.Context) ([]domain.Vehicle, error) {
	return s.vehicles.List(ctx)
}

// GetByID returns a single vehicle.
func (s *VehicleService) GetByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	cacheKey := "vehicles:id:" + strconv.Itoa(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var v domain.Vehicle
			if err := json.Unmarshal(data, &v); err == nil {
				metrics.CacheHits.WithLabelValues("vehicle").Inc()
				return &v, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("vehicle").Inc()
	}

	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(v); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, vehicleCacheTTL)
		}
	}
	return v, nil
}

// Search matches brand and model against query.
func (s *VehicleService) Search(ctx context.Context, query string, limit int) ([]domain.Vehicle, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.vehicles.Search(ctx, query, limit)
}
