package location

import "context"

type Repository interface {
	Create(ctx context.Context, req LocationRequest) (*Location, error)
	Update(ctx context.Context, id int, req LocationRequest) (*Location, error)
	FindAll(ctx context.Context) ([]Location, error)
	FindByID(ctx context.Context, id int) (*Location, error)
	SoftDelete(ctx context.Context, id int) error

	CreateFacility(ctx context.Context, locationID int, req FacilityRequest) (*Facility, error)
	UpdateFacility(ctx context.Context, id int, req FacilityRequest) (*Facility, error)
	FacilitiesByLocation(ctx context.Context, locationID int) ([]Facility, error)
	FindFacilityByID(ctx context.Context, id int) (*Facility, error)
	SoftDeleteFacility(ctx context.Context, id int) error

	CreateAsset(ctx context.Context, locationID int, url string) (*Asset, error)
	AssetsByLocation(ctx context.Context, locationID int) ([]Asset, error)
	SoftDeleteAsset(ctx context.Context, id int) error
}
