package class

import (
	"context"
	"errors"
)

var (
	ErrClassTypeNotFound = errors.New("class type not found")
	ErrClassNotFound     = errors.New("class not found")
	ErrAssetNotFound     = errors.New("class asset not found")
	ErrInvalidReference  = errors.New("referenced class type or facility does not exist")
)

type Service interface {
	CreateType(ctx context.Context, req ClassTypeRequest) (*ClassType, error)
	UpdateType(ctx context.Context, id int, req ClassTypeRequest) (*ClassType, error)
	ListTypes(ctx context.Context) ([]ClassType, error)
	DeleteType(ctx context.Context, id int) error

	Create(ctx context.Context, req ClassRequest) (*Class, error)
	Update(ctx context.Context, id int, req ClassRequest) (*Class, error)
	List(ctx context.Context, f ListFilter) ([]Class, error)
	Get(ctx context.Context, id int) (*ClassDetail, error)
	Delete(ctx context.Context, id int) error

	AddAsset(ctx context.Context, classID int, req AssetRequest) (*ClassAsset, error)
	DeleteAsset(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateType(ctx context.Context, req ClassTypeRequest) (*ClassType, error) {
	return s.repo.CreateType(ctx, req)
}

func (s *service) UpdateType(ctx context.Context, id int, req ClassTypeRequest) (*ClassType, error) {
	return s.repo.UpdateType(ctx, id, req)
}

func (s *service) ListTypes(ctx context.Context) ([]ClassType, error) {
	return s.repo.FindAllTypes(ctx)
}

func (s *service) DeleteType(ctx context.Context, id int) error {
	return s.repo.SoftDeleteType(ctx, id)
}

func (s *service) liveType(ctx context.Context, id int) error {
	ct, err := s.repo.FindTypeByID(ctx, id)
	if errors.Is(err, ErrClassTypeNotFound) {
		return ErrInvalidReference
	}
	if err != nil {
		return err
	}
	if ct.DeletedAt != nil {
		return ErrInvalidReference
	}
	return nil
}

func (s *service) Create(ctx context.Context, req ClassRequest) (*Class, error) {
	if err := s.liveType(ctx, req.ClassTypeID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req)
}

func (s *service) Update(ctx context.Context, id int, req ClassRequest) (*Class, error) {
	if err := s.liveType(ctx, req.ClassTypeID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, req)
}

func (s *service) List(ctx context.Context, f ListFilter) ([]Class, error) {
	return s.repo.FindAll(ctx, f)
}

func (s *service) Get(ctx context.Context, id int) (*ClassDetail, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ct, err := s.repo.FindTypeByID(ctx, c.ClassTypeID)
	if err != nil {
		return nil, err
	}

	assets, err := s.repo.AssetsByClass(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ClassDetail{Class: *c, ClassType: ct.Type, Assets: assets}, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *service) AddAsset(ctx context.Context, classID int, req AssetRequest) (*ClassAsset, error) {
	c, err := s.repo.FindByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if c.DeletedAt != nil {
		return nil, ErrClassNotFound
	}
	return s.repo.CreateAsset(ctx, classID, req.URL)
}

func (s *service) DeleteAsset(ctx context.Context, id int) error {
	return s.repo.DeleteAsset(ctx, id)
}
