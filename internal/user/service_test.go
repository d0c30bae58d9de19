package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/drithh/setalip-mono-sub003/internal/auth"
)

const testSecret = "test-secret"

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) userResult(args mock.Arguments) (*User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, u *User) (*User, error) {
	return m.userResult(m.Called(ctx, u))
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return m.userResult(m.Called(ctx, email))
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	return m.userResult(m.Called(ctx, id))
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*User, error) {
	return m.userResult(m.Called(ctx, id, req))
}

func (m *MockRepository) UpdateRole(ctx context.Context, id int, role string) (*User, error) {
	return m.userResult(m.Called(ctx, id, role))
}

func (m *MockRepository) MarkVerified(ctx context.Context, id int, at time.Time) (*User, error) {
	return m.userResult(m.Called(ctx, id, at))
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]User, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) SoftDelete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Create(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSessions) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessions) Revoke(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessions) RevokeAll(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

type MockVerifications struct {
	mock.Mock
}

func (m *MockVerifications) Save(ctx context.Context, userID int, code string, ttl time.Duration) error {
	return m.Called(ctx, userID, code, ttl).Error(0)
}

func (m *MockVerifications) Get(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockVerifications) Delete(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationCode(ctx context.Context, to, name, code string, ttl time.Duration) error {
	return m.Called(ctx, to, name, code, ttl).Error(0)
}

type fixture struct {
	repo     *MockRepository
	sessions *MockSessions
	codes    *MockVerifications
	mailer   *MockMailer
	svc      *service
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockRepository),
		sessions: new(MockSessions),
		codes:    new(MockVerifications),
		mailer:   new(MockMailer),
		now:      time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.sessions, f.codes, f.mailer, testSecret).(*service)
	f.svc.now = func() time.Time { return f.now }
	f.svc.genCode = func() (string, error) { return "123456", nil }
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
	f.codes.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestService_Register(t *testing.T) {
	req := RegisterRequest{Name: "Ana", Email: "ana@example.com", Phone: "081234567890", Password: "password123"}

	t.Run("creates unverified member and session", func(t *testing.T) {
		f := newFixture()
		created := &User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: auth.RoleMember}

		f.repo.On("EmailExists", mock.Anything, "ana@example.com").Return(false, nil)
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return u.Role == auth.RoleMember && u.VerifiedAt == nil && auth.CheckPassword(u.PasswordHash, "password123")
		})).Return(created, nil)
		f.codes.On("Save", mock.Anything, 1, "123456", VerificationCodeTTL).Return(nil)
		f.mailer.On("SendVerificationCode", mock.Anything, "ana@example.com", "Ana", "123456", VerificationCodeTTL).Return(nil)
		f.sessions.On("Create", mock.Anything, 1).Return("sess-1", nil)

		resp, err := f.svc.Register(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, created, resp.User)

		claims, err := auth.ValidateToken(resp.AccessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "sess-1", claims.SessionID())
		f.assertExpectations(t)
	})

	t.Run("mail failure does not fail registration", func(t *testing.T) {
		f := newFixture()
		created := &User{ID: 2, Name: "Ana", Email: "ana@example.com", Role: auth.RoleMember}

		f.repo.On("EmailExists", mock.Anything, "ana@example.com").Return(false, nil)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(created, nil)
		f.codes.On("Save", mock.Anything, 2, "123456", VerificationCodeTTL).Return(nil)
		f.mailer.On("SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
		f.sessions.On("Create", mock.Anything, 2).Return("sess-2", nil)

		_, err := f.svc.Register(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture()
		f.repo.On("EmailExists", mock.Anything, "ana@example.com").Return(true, nil)

		_, err := f.svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, ErrEmailExists)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_Login(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	stored := &User{ID: 3, Email: "ana@example.com", PasswordHash: hash, Role: auth.RoleMember}

	tests := []struct {
		name      string
		password  string
		setup     func(f *fixture)
		wantErr   error
		wantToken bool
	}{
		{
			name:     "valid credentials",
			password: "password123",
			setup: func(f *fixture) {
				f.repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
				f.sessions.On("Create", mock.Anything, 3).Return("sess-3", nil)
			},
			wantToken: true,
		},
		{
			name:     "wrong password",
			password: "nope",
			setup: func(f *fixture) {
				f.repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			password: "password123",
			setup: func(f *fixture) {
				f.repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, ErrUserNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			resp, err := f.svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, resp.AccessToken)
			assert.NotEmpty(t, resp.RefreshToken)
			f.assertExpectations(t)
		})
	}
}

func TestService_Refresh(t *testing.T) {
	pair, err := auth.GenerateTokens(auth.Identity{UserID: 4, Email: "c@example.com", Role: auth.RoleMember, SessionID: "sess-4"}, testSecret)
	require.NoError(t, err)

	t.Run("live session picks up new role", func(t *testing.T) {
		f := newFixture()
		f.sessions.On("Exists", mock.Anything, "sess-4").Return(true, nil)
		f.repo.On("FindByID", mock.Anything, 4).Return(&User{ID: 4, Email: "c@example.com", Role: auth.RoleCoach}, nil)

		resp, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)

		claims, err := auth.ValidateToken(resp.AccessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleCoach, claims.Role)
		assert.Equal(t, pair.RefreshToken, resp.RefreshToken)
	})

	t.Run("revoked session", func(t *testing.T) {
		f := newFixture()
		f.sessions.On("Exists", mock.Anything, "sess-4").Return(false, nil)

		_, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Refresh(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestService_Verify(t *testing.T) {
	member := &User{ID: 5, Name: "Ana", Email: "ana@example.com", Role: auth.RoleMember}

	t.Run("correct code", func(t *testing.T) {
		f := newFixture()
		verifiedAt := f.now
		f.repo.On("FindByID", mock.Anything, 5).Return(member, nil)
		f.codes.On("Get", mock.Anything, 5).Return("123456", nil)
		f.repo.On("MarkVerified", mock.Anything, 5, f.now).Return(&User{ID: 5, VerifiedAt: &verifiedAt}, nil)
		f.codes.On("Delete", mock.Anything, 5).Return(nil)

		u, err := f.svc.Verify(context.Background(), 5, "123456")
		require.NoError(t, err)
		assert.True(t, u.IsVerified())
		f.assertExpectations(t)
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByID", mock.Anything, 5).Return(member, nil)
		f.codes.On("Get", mock.Anything, 5).Return("654321", nil)

		_, err := f.svc.Verify(context.Background(), 5, "123456")
		assert.ErrorIs(t, err, ErrInvalidCode)
		f.repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired code", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByID", mock.Anything, 5).Return(member, nil)
		f.codes.On("Get", mock.Anything, 5).Return("", errCodeNotFound)

		_, err := f.svc.Verify(context.Background(), 5, "123456")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("already verified", func(t *testing.T) {
		f := newFixture()
		at := f.now
		f.repo.On("FindByID", mock.Anything, 5).Return(&User{ID: 5, VerifiedAt: &at}, nil)

		_, err := f.svc.Verify(context.Background(), 5, "123456")
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})
}

func TestService_IsVerified(t *testing.T) {
	f := newFixture()
	at := f.now
	f.repo.On("FindByID", mock.Anything, 1).Return(&User{ID: 1, VerifiedAt: &at}, nil)
	f.repo.On("FindByID", mock.Anything, 2).Return(&User{ID: 2}, nil)
	f.repo.On("FindByID", mock.Anything, 3).Return(&User{ID: 3, VerifiedAt: &at, DeletedAt: &at}, nil)
	f.repo.On("FindByID", mock.Anything, 4).Return(nil, ErrUserNotFound)

	for id, want := range map[int]bool{1: true, 2: false, 3: false, 4: false} {
		got, err := f.svc.IsVerified(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "user %d", id)
	}
}

func TestService_CreateByAdminIsVerified(t *testing.T) {
	f := newFixture()
	f.repo.On("EmailExists", mock.Anything, "coach@example.com").Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.Role == auth.RoleCoach && u.VerifiedAt != nil
	})).Return(&User{ID: 9, Role: auth.RoleCoach}, nil)

	u, err := f.svc.Create(context.Background(), CreateUserRequest{
		Name: "Coach", Email: "coach@example.com", Phone: "0811111111", Password: "password123", Role: auth.RoleCoach,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, u.ID)
	f.repo.AssertExpectations(t)
}

func TestService_DeleteRevokesSessions(t *testing.T) {
	f := newFixture()
	f.repo.On("SoftDelete", mock.Anything, 7).Return(nil)
	f.sessions.On("RevokeAll", mock.Anything, 7).Return(nil)

	assert.NoError(t, f.svc.Delete(context.Background(), 7))
	f.assertExpectations(t)
}
