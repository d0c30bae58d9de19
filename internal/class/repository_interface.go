package class

import "context"

type Repository interface {
	CreateType(ctx context.Context, req ClassTypeRequest) (*ClassType, error)
	UpdateType(ctx context.Context, id int, req ClassTypeRequest) (*ClassType, error)
	FindAllTypes(ctx context.Context) ([]ClassType, error)
	FindTypeByID(ctx context.Context, id int) (*ClassType, error)
	SoftDeleteType(ctx context.Context, id int) error

	Create(ctx context.Context, req ClassRequest) (*Class, error)
	Update(ctx context.Context, id int, req ClassRequest) (*Class, error)
	FindAll(ctx context.Context, f ListFilter) ([]Class, error)
	FindByID(ctx context.Context, id int) (*Class, error)
	SoftDelete(ctx context.Context, id int) error

	CreateAsset(ctx context.Context, classID int, url string) (*ClassAsset, error)
	AssetsByClass(ctx context.Context, classID int) ([]ClassAsset, error)
	DeleteAsset(ctx context.Context, id int) error
}
