package repositories

import (
	"context"

	"fleet-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

type VehicleRepository struct {
	DB DB
}

func NewVehicleRepository(db DB) *VehicleRepository {
	return &VehicleRepository{DB: db}
}

const vehicleColumns = `id, vehicle_number, owner_name, driver_id, manager_id, is_active,
	tax_token_expiry, fitness_expiry, road_permit_expiry, created_at, updated_at`

func scanVehicle(row pgx.Row) (*models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.VehicleNumber, &v.OwnerName, &v.DriverID, &v.ManagerID, &v.IsActive,
		&v.TaxTokenExpiry, &v.FitnessExpiry, &v.RoadPermitExpiry, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO vehicles(id, vehicle_number, owner_name, driver_id, manager_id, is_active,
			tax_token_expiry, fitness_expiry, road_permit_expiry, created_at, updated_at)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		v.ID, v.VehicleNumber, v.OwnerName, v.DriverID, v.ManagerID, v.IsActive,
		v.TaxTokenExpiry, v.FitnessExpiry, v.RoadPermitExpiry, v.CreatedAt,
	)
	return mapErr(err)
}

func (r *VehicleRepository) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	return scanVehicle(r.DB.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id))
}

func (r *VehicleRepository) List(ctx context.Context) ([]*models.Vehicle, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *VehicleRepository) Update(ctx context.Context, v *models.Vehicle) error {
	return affected(r.DB.Exec(ctx,
		`UPDATE vehicles SET vehicle_number=$2, owner_name=$3, driver_id=$4, manager_id=$5, is_active=$6,
			tax_token_expiry=$7, fitness_expiry=$8, road_permit_expiry=$9, updated_at=$10
         WHERE id=$1`,
		v.ID, v.VehicleNumber, v.OwnerName, v.DriverID, v.ManagerID, v.IsActive,
		v.TaxTokenExpiry, v.FitnessExpiry, v.RoadPermitExpiry, v.UpdatedAt,
	))
}

func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	return affected(r.DB.Exec(ctx, `DELETE FROM vehicles WHERE id=$1`, id))
}
