package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drithh/setalip-mono-sub003/internal/auth"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
)

var (
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidCode         = errors.New("invalid or expired verification code")
	ErrAlreadyVerified     = errors.New("account already verified")
)

type Mailer interface {
	SendVerificationCode(ctx context.Context, to, name, code string, ttl time.Duration) error
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	GetByID(ctx context.Context, id int) (*User, error)
	UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*User, error)
	RequestVerification(ctx context.Context, id int) error
	Verify(ctx context.Context, id int, code string) (*User, error)
	IsVerified(ctx context.Context, id int) (bool, error)

	List(ctx context.Context, f ListFilter) ([]User, error)
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	SetRole(ctx context.Context, id int, role string) (*User, error)
	MarkVerified(ctx context.Context, id int) (*User, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo          Repository
	sessions      auth.SessionStore
	verifications VerificationStore
	mailer        Mailer
	jwtSecret     string
	now           func() time.Time
	genCode       func() (string, error)
}

func NewService(repo Repository, sessions auth.SessionStore, verifications VerificationStore, mailer Mailer, jwtSecret string) Service {
	return &service{
		repo:          repo,
		sessions:      sessions,
		verifications: verifications,
		mailer:        mailer,
		jwtSecret:     jwtSecret,
		now:           time.Now,
		genCode:       generateCode,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, &User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         auth.RoleMember,
		LocationID:   req.LocationID,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("member registered", "user_id", u.ID)

	if err := s.sendCode(ctx, u); err != nil {
		logger.Warn("verification code not sent", "user_id", u.ID, "error", err)
	}

	return s.startSession(ctx, u)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, u)
}

func (s *service) startSession(ctx context.Context, u *User) (*AuthResponse, error) {
	sessionID, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.GenerateTokens(auth.Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		SessionID: sessionID,
	}, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return newAuthResponse(tokens, u), nil
}

// Refresh mints a new access token for a live session. The role is re-read
// so a role change applies without a new login.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := auth.ParseRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	alive, err := s.sessions.Exists(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}
	if !alive {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if u.IsDeleted() {
		return nil, ErrInvalidRefreshToken
	}

	access, err := auth.GenerateAccessToken(auth.Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		SessionID: claims.SessionID(),
	}, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{AccessToken: access, RefreshToken: refreshToken, User: u}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *service) GetByID(ctx context.Context, id int) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*User, error) {
	return s.repo.UpdateProfile(ctx, id, req)
}

func (s *service) RequestVerification(ctx context.Context, id int) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsVerified() {
		return ErrAlreadyVerified
	}
	return s.sendCode(ctx, u)
}

func (s *service) sendCode(ctx context.Context, u *User) error {
	code, err := s.genCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.verifications.Save(ctx, u.ID, code, VerificationCodeTTL); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	return s.mailer.SendVerificationCode(ctx, u.Email, u.Name, code, VerificationCodeTTL)
}

func (s *service) Verify(ctx context.Context, id int, code string) (*User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsVerified() {
		return nil, ErrAlreadyVerified
	}

	stored, err := s.verifications.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errCodeNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if stored != code {
		return nil, ErrInvalidCode
	}

	verified, err := s.repo.MarkVerified(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.verifications.Delete(ctx, id); err != nil {
		logger.Warn("verification code not cleared", "user_id", id, "error", err)
	}

	logger.Info("member verified", "user_id", id)
	return verified, nil
}

func (s *service) IsVerified(ctx context.Context, id int) (bool, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.IsVerified() && !u.IsDeleted(), nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]User, error) {
	return s.repo.List(ctx, f)
}

// Create adds a staff or member account from the admin panel. Accounts made
// by an admin are verified on creation.
func (s *service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return s.repo.Create(ctx, &User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		VerifiedAt:   &now,
	})
}

func (s *service) SetRole(ctx context.Context, id int, role string) (*User, error) {
	return s.repo.UpdateRole(ctx, id, role)
}

func (s *service) MarkVerified(ctx context.Context, id int) (*User, error) {
	return s.repo.MarkVerified(ctx, id, s.now())
}

func (s *service) Delete(ctx context.Context, id int) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.RevokeAll(ctx, id); err != nil {
		logger.Warn("sessions not revoked for deleted user", "user_id", id, "error", err)
	}
	return nil
}
