package location

import (
	"context"
	"errors"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrFacilityNotFound = errors.New("facility not found")
	ErrAssetNotFound    = errors.New("asset not found")
)

type Service interface {
	Create(ctx context.Context, req LocationRequest) (*Location, error)
	Update(ctx context.Context, id int, req LocationRequest) (*Location, error)
	List(ctx context.Context) ([]Location, error)
	Get(ctx context.Context, id int) (*LocationDetail, error)
	Delete(ctx context.Context, id int) error

	AddFacility(ctx context.Context, locationID int, req FacilityRequest) (*Facility, error)
	UpdateFacility(ctx context.Context, id int, req FacilityRequest) (*Facility, error)
	DeleteFacility(ctx context.Context, id int) error

	AddAsset(ctx context.Context, locationID int, req AssetRequest) (*Asset, error)
	DeleteAsset(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req LocationRequest) (*Location, error) {
	return s.repo.Create(ctx, req)
}

func (s *service) Update(ctx context.Context, id int, req LocationRequest) (*Location, error) {
	return s.repo.Update(ctx, id, req)
}

func (s *service) List(ctx context.Context) ([]Location, error) {
	return s.repo.FindAll(ctx)
}

// Get returns a location even when soft-deleted; its children are only the
// ones still live.
func (s *service) Get(ctx context.Context, id int) (*LocationDetail, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	facilities, err := s.repo.FacilitiesByLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	assets, err := s.repo.AssetsByLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	return &LocationDetail{Location: *l, Facilities: facilities, Assets: assets}, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *service) requireLive(ctx context.Context, locationID int) error {
	l, err := s.repo.FindByID(ctx, locationID)
	if err != nil {
		return err
	}
	if l.DeletedAt != nil {
		return ErrLocationNotFound
	}
	return nil
}

func (s *service) AddFacility(ctx context.Context, locationID int, req FacilityRequest) (*Facility, error) {
	if err := s.requireLive(ctx, locationID); err != nil {
		return nil, err
	}
	return s.repo.CreateFacility(ctx, locationID, req)
}

func (s *service) UpdateFacility(ctx context.Context, id int, req FacilityRequest) (*Facility, error) {
	return s.repo.UpdateFacility(ctx, id, req)
}

func (s *service) DeleteFacility(ctx context.Context, id int) error {
	return s.repo.SoftDeleteFacility(ctx, id)
}

func (s *service) AddAsset(ctx context.Context, locationID int, req AssetRequest) (*Asset, error) {
	if err := s.requireLive(ctx, locationID); err != nil {
		return nil, err
	}
	return s.repo.CreateAsset(ctx, locationID, req.URL)
}

func (s *service) DeleteAsset(ctx context.Context, id int) error {
	return s.repo.SoftDeleteAsset(ctx, id)
}
