package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	locationColumns = `id, name, address, phone_number, email, link_maps, created_at, updated_at, deleted_at`
	facilityColumns = `id, location_id, name, capacity, level, image_url, created_at, updated_at, deleted_at`
	assetColumns    = `id, location_id, url, created_at, deleted_at`
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func get(ctx context.Context, q sqlx.QueryerContext, dest interface{}, notFound error, query string, args ...interface{}) error {
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		return err
	}
	return nil
}

func (r *repository) softDelete(ctx context.Context, table string, id int, notFound error) error {
	res, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound
	}
	return nil
}

func (r *repository) Create(ctx context.Context, req LocationRequest) (*Location, error) {
	query := `
		INSERT INTO locations (name, address, phone_number, email, link_maps)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + locationColumns

	var l Location
	if err := get(ctx, r.db, &l, ErrLocationNotFound, query, req.Name, req.Address, req.PhoneNumber, req.Email, req.LinkMaps); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) Update(ctx context.Context, id int, req LocationRequest) (*Location, error) {
	query := `
		UPDATE locations
		SET name = $2, address = $3, phone_number = $4, email = $5, link_maps = $6, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + locationColumns

	var l Location
	if err := get(ctx, r.db, &l, ErrLocationNotFound, query, id, req.Name, req.Address, req.PhoneNumber, req.Email, req.LinkMaps); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Location, error) {
	locations := []Location{}
	err := r.db.SelectContext(ctx, &locations, `SELECT `+locationColumns+` FROM locations WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Location, error) {
	var l Location
	if err := get(ctx, r.db, &l, ErrLocationNotFound, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) SoftDelete(ctx context.Context, id int) error {
	return r.softDelete(ctx, "locations", id, ErrLocationNotFound)
}

func (r *repository) CreateFacility(ctx context.Context, locationID int, req FacilityRequest) (*Facility, error) {
	query := `
		INSERT INTO location_facilities (location_id, name, capacity, level, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + facilityColumns

	var f Facility
	if err := get(ctx, r.db, &f, ErrFacilityNotFound, query, locationID, req.Name, req.Capacity, req.Level, req.ImageURL); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) UpdateFacility(ctx context.Context, id int, req FacilityRequest) (*Facility, error) {
	query := `
		UPDATE location_facilities
		SET name = $2, capacity = $3, level = $4, image_url = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + facilityColumns

	var f Facility
	if err := get(ctx, r.db, &f, ErrFacilityNotFound, query, id, req.Name, req.Capacity, req.Level, req.ImageURL); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) FacilitiesByLocation(ctx context.Context, locationID int) ([]Facility, error) {
	facilities := []Facility{}
	query := `SELECT ` + facilityColumns + ` FROM location_facilities WHERE location_id = $1 AND deleted_at IS NULL ORDER BY level, name`
	if err := r.db.SelectContext(ctx, &facilities, query, locationID); err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	return facilities, nil
}

func (r *repository) FindFacilityByID(ctx context.Context, id int) (*Facility, error) {
	var f Facility
	if err := get(ctx, r.db, &f, ErrFacilityNotFound, `SELECT `+facilityColumns+` FROM location_facilities WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) SoftDeleteFacility(ctx context.Context, id int) error {
	return r.softDelete(ctx, "location_facilities", id, ErrFacilityNotFound)
}

func (r *repository) CreateAsset(ctx context.Context, locationID int, url string) (*Asset, error) {
	query := `INSERT INTO location_assets (location_id, url) VALUES ($1, $2) RETURNING ` + assetColumns

	var a Asset
	if err := get(ctx, r.db, &a, ErrAssetNotFound, query, locationID, url); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) AssetsByLocation(ctx context.Context, locationID int) ([]Asset, error) {
	assets := []Asset{}
	query := `SELECT ` + assetColumns + ` FROM location_assets WHERE location_id = $1 AND deleted_at IS NULL ORDER BY id`
	if err := r.db.SelectContext(ctx, &assets, query, locationID); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

func (r *repository) SoftDeleteAsset(ctx context.Context, id int) error {
	return r.softDelete(ctx, "location_assets", id, ErrAssetNotFound)
}
