package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/iq-fit/internal/cache"
	"github.com/magabrotheeeer/iq-fit/internal/lib/password"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

type RepoMock struct{ mock.Mock }

func userResult(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) RegisterUser(ctx context.Context, user models.User) (*models.User, error) {
	return userResult(m.Called(ctx, user))
}
func (m *RepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return userResult(m.Called(ctx, id))
}
func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return userResult(m.Called(ctx, email))
}
func (m *RepoMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *RepoMock) UpdateUser(ctx context.Context, id int64, p models.Profile, passwordHash string) (*models.User, error) {
	return userResult(m.Called(ctx, id, p, passwordHash))
}
func (m *RepoMock) ToggleSuspend(ctx context.Context, id int64) (*models.User, error) {
	return userResult(m.Called(ctx, id))
}
func (m *RepoMock) SetRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	return userResult(m.Called(ctx, id, role))
}
func (m *RepoMock) SetPremium(ctx context.Context, id int64, value bool) (*models.User, error) {
	return userResult(m.Called(ctx, id, value))
}
func (m *RepoMock) PremiumHistory(ctx context.Context, userID int64) ([]models.PremiumChange, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PremiumChange), args.Error(1)
}
func (m *RepoMock) GetAccountStatus(ctx context.Context, id int64) (*models.AccountStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountStatus), args.Error(1)
}
func (m *RepoMock) DeleteUser(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) PurgeUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type TokenMock struct{ mock.Mock }

func (m *TokenMock) GenerateToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService() (*AccountService, *RepoMock, *CacheMock, *TokenMock) {
	repo, c, tokens := new(RepoMock), new(CacheMock), new(TokenMock)
	return NewAccountService(repo, c, tokens, newNoopLogger(), time.Minute), repo, c, tokens
}

var ctx = context.Background()

func TestAccountService_Register(t *testing.T) {
	t.Run("hashes password and returns stored user", func(t *testing.T) {
		s, repo, _, _ := newService()
		repo.On("GetUserByEmail", ctx, "ann@example.com").Return(nil, models.ErrNotFound)
		repo.On("RegisterUser", ctx, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "ann@example.com" && u.FullName == "Ann" &&
				password.CompareHash(u.PasswordHash, "secret") == nil
		})).Return(&models.User{ID: 1, Email: "ann@example.com", Role: models.RoleSuperAdmin}, nil)

		u, err := s.Register(ctx, models.Profile{FullName: "Ann", Email: "ann@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleSuperAdmin, u.Role)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		s, repo, _, _ := newService()
		repo.On("GetUserByEmail", ctx, "ann@example.com").Return(&models.User{ID: 1}, nil)

		_, err := s.Register(ctx, models.Profile{Email: "ann@example.com", Password: "x"})
		assert.ErrorIs(t, err, models.ErrConflict)
		repo.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
	})

	t.Run("empty password is a bad request", func(t *testing.T) {
		s, repo, _, _ := newService()
		repo.On("GetUserByEmail", ctx, "b@example.com").Return(nil, models.ErrNotFound)

		_, err := s.Register(ctx, models.Profile{Email: "b@example.com"})
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("concurrent duplicate surfaces as conflict", func(t *testing.T) {
		s, repo, _, _ := newService()
		repo.On("GetUserByEmail", ctx, "c@example.com").Return(nil, models.ErrNotFound)
		repo.On("RegisterUser", ctx, mock.Anything).Return(nil, models.ErrConflict)

		_, err := s.Register(ctx, models.Profile{Email: "c@example.com", Password: "x"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}

func TestAccountService_Authenticate(t *testing.T) {
	hash, err := password.GetHash("right")
	require.NoError(t, err)

	tests := []struct {
		name      string
		setup     func(repo *RepoMock, tokens *TokenMock)
		password  string
		wantErr   error
		wantToken string
	}{
		{
			name: "success",
			setup: func(repo *RepoMock, tokens *TokenMock) {
				u := &models.User{ID: 5, Email: "a@x.io", PasswordHash: hash, Role: models.RoleUser}
				repo.On("GetUserByEmail", ctx, "a@x.io").Return(u, nil)
				tokens.On("GenerateToken", u).Return("signed", nil)
			},
			password:  "right",
			wantToken: "signed",
		},
		{
			name: "unknown email",
			setup: func(repo *RepoMock, _ *TokenMock) {
				repo.On("GetUserByEmail", ctx, "a@x.io").Return(nil, models.ErrNotFound)
			},
			password: "right",
			wantErr:  models.ErrUnauthorized,
		},
		{
			name: "wrong password",
			setup: func(repo *RepoMock, _ *TokenMock) {
				repo.On("GetUserByEmail", ctx, "a@x.io").
					Return(&models.User{ID: 5, PasswordHash: hash}, nil)
			},
			password: "wrong",
			wantErr:  models.ErrUnauthorized,
		},
		{
			name: "suspended account",
			setup: func(repo *RepoMock, _ *TokenMock) {
				repo.On("GetUserByEmail", ctx, "a@x.io").
					Return(&models.User{ID: 5, PasswordHash: hash, Suspended: true}, nil)
			},
			password: "right",
			wantErr:  models.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, _, tokens := newService()
			tt.setup(repo, tokens)

			u, token, err := s.Authenticate(ctx, "a@x.io", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, int64(5), u.ID)
		})
	}
}

func TestAccountService_Authenticate_SameErrorForUnknownAndWrong(t *testing.T) {
	hash, err := password.GetHash("right")
	require.NoError(t, err)

	s, repo, _, _ := newService()
	repo.On("GetUserByEmail", ctx, "ghost@x.io").Return(nil, models.ErrNotFound)
	repo.On("GetUserByEmail", ctx, "real@x.io").Return(&models.User{ID: 1, PasswordHash: hash}, nil)

	_, _, errUnknown := s.Authenticate(ctx, "ghost@x.io", "right")
	_, _, errWrong := s.Authenticate(ctx, "real@x.io", "wrong")
	assert.Equal(t, errUnknown, errWrong)
	assert.Equal(t, "invalid email or password", errWrong.Error())
}

func TestAccountService_SetRole(t *testing.T) {
	super := &models.User{ID: 1, Role: models.RoleSuperAdmin}
	admin := &models.User{ID: 2, Role: models.RoleAdmin}
	user := &models.User{ID: 3, Role: models.RoleUser}

	tests := []struct {
		name    string
		actor   int64
		target  int64
		role    string
		setup   func(repo *RepoMock, c *CacheMock)
		wantErr error
	}{
		{
			name: "super admin promotes user", actor: 1, target: 3, role: "ADMIN",
			setup: func(repo *RepoMock, c *CacheMock) {
				repo.On("GetUser", ctx, int64(1)).Return(super, nil)
				repo.On("GetUser", ctx, int64(3)).Return(user, nil)
				repo.On("SetRole", ctx, int64(3), models.RoleAdmin).
					Return(&models.User{ID: 3, Role: models.RoleAdmin}, nil)
				c.On("Invalidate", cache.StatusKey(3)).Return(nil)
			},
		},
		{
			name: "admin actor is forbidden", actor: 2, target: 3, role: "ADMIN",
			setup: func(repo *RepoMock, _ *CacheMock) {
				repo.On("GetUser", ctx, int64(2)).Return(admin, nil)
			},
			wantErr: models.ErrForbidden,
		},
		{
			name: "super admin target is forbidden", actor: 1, target: 1, role: "USER",
			setup: func(repo *RepoMock, _ *CacheMock) {
				repo.On("GetUser", ctx, int64(1)).Return(super, nil)
			},
			wantErr: models.ErrForbidden,
		},
		{
			name: "missing actor", actor: 9, target: 3, role: "ADMIN",
			setup: func(repo *RepoMock, _ *CacheMock) {
				repo.On("GetUser", ctx, int64(9)).Return(nil, models.ErrNotFound)
			},
			wantErr: models.ErrNotFound,
		},
		{
			name: "missing target", actor: 1, target: 9, role: "ADMIN",
			setup: func(repo *RepoMock, _ *CacheMock) {
				repo.On("GetUser", ctx, int64(1)).Return(super, nil)
				repo.On("GetUser", ctx, int64(9)).Return(nil, models.ErrNotFound)
			},
			wantErr: models.ErrNotFound,
		},
		{
			name: "unknown role", actor: 1, target: 3, role: "OWNER",
			setup: func(repo *RepoMock, _ *CacheMock) {
				repo.On("GetUser", ctx, int64(1)).Return(super, nil)
				repo.On("GetUser", ctx, int64(3)).Return(user, nil)
			},
			wantErr: models.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, c, _ := newService()
			tt.setup(repo, c)

			got, err := s.SetRole(ctx, tt.actor, tt.target, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.RoleAdmin, got.Role)
			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestAccountService_ToggleSuspend(t *testing.T) {
	s, repo, c, _ := newService()
	repo.On("ToggleSuspend", ctx, int64(4)).Return(&models.User{ID: 4, Suspended: true}, nil).Once()
	repo.On("ToggleSuspend", ctx, int64(4)).Return(&models.User{ID: 4, Suspended: false}, nil).Once()
	repo.On("ToggleSuspend", ctx, int64(99)).Return(nil, models.ErrNotFound)
	c.On("Invalidate", cache.StatusKey(4)).Return(nil).Twice()

	first, err := s.ToggleSuspend(ctx, 4)
	require.NoError(t, err)
	assert.True(t, first.Suspended)
	second, err := s.ToggleSuspend(ctx, 4)
	require.NoError(t, err)
	assert.False(t, second.Suspended)

	_, err = s.ToggleSuspend(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
	c.AssertExpectations(t)
}

func TestAccountService_UpdateProfile(t *testing.T) {
	t.Run("empty password keeps credential", func(t *testing.T) {
		s, repo, _, _ := newService()
		p := models.Profile{FullName: "N", Email: "n@x.io"}
		repo.On("UpdateUser", ctx, int64(2), p, "").Return(&models.User{ID: 2}, nil)

		_, err := s.UpdateProfile(ctx, 2, p)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("new password is hashed", func(t *testing.T) {
		s, repo, _, _ := newService()
		p := models.Profile{FullName: "N", Email: "n@x.io", Password: "fresh"}
		repo.On("UpdateUser", ctx, int64(2), p, mock.MatchedBy(func(h string) bool {
			return h != "fresh" && password.CompareHash(h, "fresh") == nil
		})).Return(&models.User{ID: 2}, nil)

		_, err := s.UpdateProfile(ctx, 2, p)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestAccountService_Status(t *testing.T) {
	t.Run("cache hit", func(t *testing.T) {
		s, repo, c, _ := newService()
		c.On("Get", cache.StatusKey(1), mock.Anything).Return(true, nil)

		_, err := s.Status(ctx, 1)
		require.NoError(t, err)
		repo.AssertNotCalled(t, "GetAccountStatus", mock.Anything, mock.Anything)
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		s, repo, c, _ := newService()
		st := &models.AccountStatus{Role: models.RoleUser, IsPremium: true}
		c.On("Get", cache.StatusKey(1), mock.Anything).Return(false, nil)
		repo.On("GetAccountStatus", ctx, int64(1)).Return(st, nil)
		c.On("Set", cache.StatusKey(1), st, time.Minute).Return(nil)

		got, err := s.Status(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, st, got)
		c.AssertExpectations(t)
	})

	t.Run("cache failure falls back to repository", func(t *testing.T) {
		s, repo, c, _ := newService()
		st := &models.AccountStatus{Role: models.RoleUser}
		c.On("Get", cache.StatusKey(1), mock.Anything).Return(false, errors.New("redis down"))
		repo.On("GetAccountStatus", ctx, int64(1)).Return(st, nil)
		c.On("Set", cache.StatusKey(1), st, time.Minute).Return(errors.New("redis down"))

		got, err := s.Status(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, st, got)
	})
}

func TestAccountService_Purge(t *testing.T) {
	s, repo, c, _ := newService()
	repo.On("ListUsers", ctx).Return([]*models.User{{ID: 1}, {ID: 2}}, nil)
	repo.On("PurgeUsers", ctx).Return(int64(2), nil)
	c.On("Invalidate", cache.StatusKey(1)).Return(nil)
	c.On("Invalidate", cache.StatusKey(2)).Return(nil)

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	c.AssertExpectations(t)
}

func TestAccountService_PremiumHistory_UnknownUser(t *testing.T) {
	s, repo, _, _ := newService()
	repo.On("GetUser", ctx, int64(8)).Return(nil, models.ErrNotFound)

	_, err := s.PremiumHistory(ctx, 8)
	assert.ErrorIs(t, err, models.ErrNotFound)
	repo.AssertNotCalled(t, "PremiumHistory", mock.Anything, mock.Anything)
}

func TestAccountService_SetPremium(t *testing.T) {
	s, repo, c, _ := newService()
	repo.On("SetPremium", ctx, int64(3), true).Return(&models.User{ID: 3, IsPremium: true}, nil)
	c.On("Invalidate", cache.StatusKey(3)).Return(errors.New("redis down"))

	u, err := s.SetPremium(ctx, 3, true)
	require.NoError(t, err)
	assert.True(t, u.IsPremium)
}
