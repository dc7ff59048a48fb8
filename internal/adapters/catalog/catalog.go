// Package catalog serves the vehicle catalog from a JSON document.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
)

//go:embed vehicles.json
var defaultCatalog []byte

// Repo implements ports.VehicleRepository over an in-memory catalog.
type Repo struct {
	vehicles []domain.Vehicle
	byID     map[int]int
}

// Default returns the catalog bundled with the binary.
func Default() (*Repo, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, or the bundled one when path is empty.
func Load(path string) (*Repo, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from a JSON array of vehicles. Entries without a
// positive combined consumption or with a duplicate id are rejected.
func Parse(data []byte) (*Repo, error) {
	var vehicles []domain.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	sort.SliceStable(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	byID := make(map[int]int, len(vehicles))
	for i, v := range vehicles {
		if _, dup := byID[v.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate vehicle id %d", v.ID)
		}
		if v.FuelConsumption.Combined <= 0 {
			return nil, fmt.Errorf("catalog: vehicle %d (%s) has no combined consumption", v.ID, v.DisplayName())
		}
		byID[v.ID] = i
	}
	return &Repo{vehicles: vehicles, byID: byID}, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Vehicle, error) {
	out := make([]domain.Vehicle, len(r.vehicles))
	copy(out, r.vehicles)
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	v := r.vehicles[i]
	return &v, nil
}

// Search matches query case-insensitively against "brand model" and the engine.
func (r *Repo) Search(ctx context.Context, query string, limit int) ([]domain.Vehicle, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.Vehicle
	for _, v := range r.vehicles {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(v.DisplayName()), q) || strings.Contains(strings.ToLower(v.Engine), q) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Len returns the number of vehicles.
func (r *Repo) Len() int {
	return len(r.vehicles)
}
