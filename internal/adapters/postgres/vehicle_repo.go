package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
)

// VehicleRepo implements ports.VehicleRepository over the vehicles table.
type VehicleRepo struct {
	db *DB
}

func NewVehicleRepo(db *DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

const vehicleColumns = `id, rank, brand, model, COALESCE(type, ''), COALESCE(class, ''), engine,
	fc_city, fc_highway, fc_combined, fc_average, COALESCE(image, '')`

func (r *VehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectVehicles(rows)
}

func (r *VehicleRepo) GetByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle %d: %w", id, err)
	}
	return &v, nil
}

func (r *VehicleRepo) Search(ctx context.Context, query string, limit int) ([]domain.Vehicle, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE (brand || ' ' || model) ILIKE '%' || $1 || '%'
		   OR engine ILIKE '%' || $1 || '%'
		ORDER BY rank NULLS LAST, id
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	return collectVehicles(rows)
}

// Upsert writes catalog entries. It is only used by the seed command.
func (r *VehicleRepo) Upsert(ctx context.Context, vehicles []domain.Vehicle) error {
	batch := &pgx.Batch{}
	for _, v := range vehicles {
		fc := v.FuelConsumption
		batch.Queue(`
			INSERT INTO vehicles (id, rank, brand, model, type, class, engine, fc_city, fc_highway, fc_combined, fc_average, image)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11, NULLIF($12, ''))
			ON CONFLICT (id) DO UPDATE SET
				rank = EXCLUDED.rank, brand = EXCLUDED.brand, model = EXCLUDED.model,
				type = EXCLUDED.type, class = EXCLUDED.class, engine = EXCLUDED.engine,
				fc_city = EXCLUDED.fc_city, fc_highway = EXCLUDED.fc_highway,
				fc_combined = EXCLUDED.fc_combined, fc_average = EXCLUDED.fc_average,
				image = EXCLUDED.image
		`, v.ID, v.Rank, v.Brand, v.Model, v.Type, v.Class, v.Engine,
			fc.City, fc.Highway, fc.Combined, fc.Average, v.Image)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range vehicles {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert vehicle: %w", err)
		}
	}
	return nil
}

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var v domain.Vehicle
	fc := &v.FuelConsumption
	err := row.Scan(&v.ID, &v.Rank, &v.Brand, &v.Model, &v.Type, &v.Class, &v.Engine,
		&fc.City, &fc.Highway, &fc.Combined, &fc.Average, &v.Image)
	return v, err
}

func collectVehicles(rows pgx.Rows) ([]domain.Vehicle, error) {
	defer rows.Close()
	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}
