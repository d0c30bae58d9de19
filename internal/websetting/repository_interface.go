package websetting

import "context"

type Repository interface {
	GetSetting(ctx context.Context) (*Setting, error)
	UpdateSetting(ctx context.Context, req SettingRequest) (*Setting, error)

	CreateFAQ(ctx context.Context, req FAQRequest) (*FAQ, error)
	UpdateFAQ(ctx context.Context, id int, req FAQRequest) (*FAQ, error)
	FindAllFAQs(ctx context.Context) ([]FAQ, error)
	DeleteFAQ(ctx context.Context, id int) error

	CreateReview(ctx context.Context, userID int, req ReviewRequest) (*Review, error)
	FindReviews(ctx context.Context, visibleOnly bool, limit, offset int) ([]Review, error)
	SetReviewVisibility(ctx context.Context, id int, visible bool) (*Review, error)
	DeleteReview(ctx context.Context, id int) error
}
