package websetting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	settingColumns = `logo_url, phone_number, email, instagram, tiktok, address, about, updated_at`
	faqColumns     = `id, question, answer, created_at, updated_at`
	reviewColumns  = `id, user_id, name, email, content, rating, is_visible, created_at`
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSetting(ctx context.Context) (*Setting, error) {
	var s Setting
	if err := r.db.GetContext(ctx, &s, `SELECT `+settingColumns+` FROM web_settings WHERE id = 1`); err != nil {
		return nil, fmt.Errorf("get web settings: %w", err)
	}
	return &s, nil
}

func (r *repository) UpdateSetting(ctx context.Context, req SettingRequest) (*Setting, error) {
	query := `
		INSERT INTO web_settings (id, logo_url, phone_number, email, instagram, tiktok, address, about)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			logo_url = EXCLUDED.logo_url,
			phone_number = EXCLUDED.phone_number,
			email = EXCLUDED.email,
			instagram = EXCLUDED.instagram,
			tiktok = EXCLUDED.tiktok,
			address = EXCLUDED.address,
			about = EXCLUDED.about,
			updated_at = NOW()
		RETURNING ` + settingColumns

	var s Setting
	err := r.db.GetContext(ctx, &s, query, req.LogoURL, req.PhoneNumber, req.Email, req.Instagram, req.TikTok, req.Address, req.About)
	if err != nil {
		return nil, fmt.Errorf("update web settings: %w", err)
	}
	return &s, nil
}

func (r *repository) CreateFAQ(ctx context.Context, req FAQRequest) (*FAQ, error) {
	var f FAQ
	query := `INSERT INTO faqs (question, answer) VALUES ($1, $2) RETURNING ` + faqColumns
	if err := r.db.GetContext(ctx, &f, query, req.Question, req.Answer); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) UpdateFAQ(ctx context.Context, id int, req FAQRequest) (*FAQ, error) {
	var f FAQ
	query := `UPDATE faqs SET question = $2, answer = $3, updated_at = NOW() WHERE id = $1 RETURNING ` + faqColumns
	if err := r.db.GetContext(ctx, &f, query, id, req.Question, req.Answer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFAQNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *repository) FindAllFAQs(ctx context.Context) ([]FAQ, error) {
	faqs := []FAQ{}
	if err := r.db.SelectContext(ctx, &faqs, `SELECT `+faqColumns+` FROM faqs ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	return faqs, nil
}

func (r *repository) DeleteFAQ(ctx context.Context, id int) error {
	return r.deleteByID(ctx, `DELETE FROM faqs WHERE id = $1`, id, ErrFAQNotFound)
}

// CreateReview copies the author's name and email at the time of writing.
func (r *repository) CreateReview(ctx context.Context, userID int, req ReviewRequest) (*Review, error) {
	query := `
		INSERT INTO reviews (user_id, name, email, content, rating)
		SELECT id, name, email, $2, $3 FROM users WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + reviewColumns

	var rv Review
	if err := r.db.GetContext(ctx, &rv, query, userID, req.Content, req.Rating); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &rv, nil
}

func (r *repository) FindReviews(ctx context.Context, visibleOnly bool, limit, offset int) ([]Review, error) {
	reviews := []Review{}
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE (NOT $1 OR is_visible) ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &reviews, query, visibleOnly, limit, offset); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *repository) SetReviewVisibility(ctx context.Context, id int, visible bool) (*Review, error) {
	var rv Review
	query := `UPDATE reviews SET is_visible = $2 WHERE id = $1 RETURNING ` + reviewColumns
	if err := r.db.GetContext(ctx, &rv, query, id, visible); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rv, nil
}

func (r *repository) DeleteReview(ctx context.Context, id int) error {
	return r.deleteByID(ctx, `DELETE FROM reviews WHERE id = $1`, id, ErrReviewNotFound)
}

func (r *repository) deleteByID(ctx context.Context, query string, id int, notFound error) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound
	}
	return nil
}
