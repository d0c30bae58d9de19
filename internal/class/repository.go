package class

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/drithh/setalip-mono-sub003/internal/db"
)

const (
	typeColumns  = `id, type, created_at, updated_at, deleted_at`
	classColumns = `id, name, description, duration, slot, class_type_id, location_facility_id, created_at, updated_at, deleted_at`
	assetColumns = `id, class_id, url, created_at`
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// mapErr translates driver errors into package sentinels.
func mapErr(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case db.IsForeignKeyViolation(err):
		return ErrInvalidReference
	default:
		return err
	}
}

func (r *repository) CreateType(ctx context.Context, req ClassTypeRequest) (*ClassType, error) {
	var ct ClassType
	err := r.db.GetContext(ctx, &ct, `INSERT INTO class_types (type) VALUES ($1) RETURNING `+typeColumns, req.Type)
	if err != nil {
		return nil, mapErr(err, ErrClassTypeNotFound)
	}
	return &ct, nil
}

func (r *repository) UpdateType(ctx context.Context, id int, req ClassTypeRequest) (*ClassType, error) {
	var ct ClassType
	query := `UPDATE class_types SET type = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL RETURNING ` + typeColumns
	if err := r.db.GetContext(ctx, &ct, query, id, req.Type); err != nil {
		return nil, mapErr(err, ErrClassTypeNotFound)
	}
	return &ct, nil
}

func (r *repository) FindAllTypes(ctx context.Context) ([]ClassType, error) {
	types := []ClassType{}
	if err := r.db.SelectContext(ctx, &types, `SELECT `+typeColumns+` FROM class_types WHERE deleted_at IS NULL ORDER BY type`); err != nil {
		return nil, fmt.Errorf("list class types: %w", err)
	}
	return types, nil
}

func (r *repository) FindTypeByID(ctx context.Context, id int) (*ClassType, error) {
	var ct ClassType
	if err := r.db.GetContext(ctx, &ct, `SELECT `+typeColumns+` FROM class_types WHERE id = $1`, id); err != nil {
		return nil, mapErr(err, ErrClassTypeNotFound)
	}
	return &ct, nil
}

func (r *repository) SoftDeleteType(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE class_types SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete class type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClassTypeNotFound
	}
	return nil
}

func (r *repository) Create(ctx context.Context, req ClassRequest) (*Class, error) {
	query := `
		INSERT INTO classes (name, description, duration, slot, class_type_id, location_facility_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + classColumns

	var c Class
	err := r.db.GetContext(ctx, &c, query, req.Name, req.Description, req.Duration, req.Slot, req.ClassTypeID, req.LocationFacilityID)
	if err != nil {
		return nil, mapErr(err, ErrClassNotFound)
	}
	return &c, nil
}

func (r *repository) Update(ctx context.Context, id int, req ClassRequest) (*Class, error) {
	query := `
		UPDATE classes
		SET name = $2, description = $3, duration = $4, slot = $5, class_type_id = $6,
		    location_facility_id = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + classColumns

	var c Class
	err := r.db.GetContext(ctx, &c, query, id, req.Name, req.Description, req.Duration, req.Slot, req.ClassTypeID, req.LocationFacilityID)
	if err != nil {
		return nil, mapErr(err, ErrClassNotFound)
	}
	return &c, nil
}

func (r *repository) FindAll(ctx context.Context, f ListFilter) ([]Class, error) {
	classes := []Class{}
	query := `SELECT ` + classColumns + ` FROM classes WHERE deleted_at IS NULL AND ($1 = 0 OR class_type_id = $1) ORDER BY name`
	if err := r.db.SelectContext(ctx, &classes, query, f.ClassTypeID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Class, error) {
	var c Class
	if err := r.db.GetContext(ctx, &c, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id); err != nil {
		return nil, mapErr(err, ErrClassNotFound)
	}
	return &c, nil
}

func (r *repository) SoftDelete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE classes SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClassNotFound
	}
	return nil
}

func (r *repository) CreateAsset(ctx context.Context, classID int, url string) (*ClassAsset, error) {
	var a ClassAsset
	err := r.db.GetContext(ctx, &a, `INSERT INTO class_assets (class_id, url) VALUES ($1, $2) RETURNING `+assetColumns, classID, url)
	if err != nil {
		return nil, mapErr(err, ErrAssetNotFound)
	}
	return &a, nil
}

func (r *repository) AssetsByClass(ctx context.Context, classID int) ([]ClassAsset, error) {
	assets := []ClassAsset{}
	if err := r.db.SelectContext(ctx, &assets, `SELECT `+assetColumns+` FROM class_assets WHERE class_id = $1 ORDER BY id`, classID); err != nil {
		return nil, fmt.Errorf("list class assets: %w", err)
	}
	return assets, nil
}

func (r *repository) DeleteAsset(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM class_assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssetNotFound
	}
	return nil
}
