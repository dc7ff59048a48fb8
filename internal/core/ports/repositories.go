package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/tunitrip/internal/core/domain"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// VehicleRepository reads the vehicle catalog. The catalog is reference data
// and is never written by the service.
type VehicleRepository interface {
	List(ctx context.Context) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id int) (*domain.Vehicle, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Vehicle, error)
}
