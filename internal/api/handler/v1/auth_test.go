package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/config"
	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/pkg/jwthelper"
	"github.com/careerexpo/exhibition-api/internal/service"
)

const signingKey = "test-signing-key-0123456789"

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.User), args.Error(1)
}

func newAuthHandler(svc AuthService) *AuthHandler {
	return NewAuthHandler(&config.APIConfig{JWTSigningKey: signingKey, JWTTTL: time.Hour}, svc)
}

func TestAuthHandler_HandleSignup(t *testing.T) {
	body := map[string]any{
		"email":            "ada@example.com",
		"password":         "career2026",
		"confirm_password": "career2026",
		"name":             "Ada",
		"role":             "SCHOOL_ADMIN",
	}

	t.Run("created", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Signup", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
			return u.Email == "ada@example.com" && u.Role == domain.RoleSchoolAdmin
		})).Return(domain.User{ID: 9, Email: "ada@example.com", Role: domain.RoleSchoolAdmin}, nil)
		r := newRouter(nil, http.MethodPost, "/auth/signup", newAuthHandler(svc).HandleSignup)

		rec := do(t, r, http.MethodPost, "/auth/signup", body)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "career2026")
	})

	t.Run("email taken", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Signup", mock.Anything, mock.Anything).Return(domain.User{}, service.ErrUserEmailExists)
		r := newRouter(nil, http.MethodPost, "/auth/signup", newAuthHandler(svc).HandleSignup)

		rec := do(t, r, http.MethodPost, "/auth/signup", body)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAuthHandler_HandleLogin(t *testing.T) {
	t.Run("issues a token carrying the role", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "ada@example.com", "career2026").
			Return(domain.User{ID: 9, Role: domain.RoleProviderAdmin}, nil)
		r := newRouter(nil, http.MethodPost, "/auth/login", newAuthHandler(svc).HandleLogin)

		rec := do(t, r, http.MethodPost, "/auth/login", map[string]any{"email": "ada@example.com", "password": "career2026"})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp response.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		claims, err := jwthelper.ParseToken([]byte(signingKey), resp.Token)
		require.NoError(t, err)
		id, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, uint(9), id)
		assert.Equal(t, string(domain.RoleProviderAdmin), claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "ada@example.com", "nope12345").Return(domain.User{}, service.ErrWrongPassword)
		r := newRouter(nil, http.MethodPost, "/auth/login", newAuthHandler(svc).HandleLogin)

		rec := do(t, r, http.MethodPost, "/auth/login", map[string]any{"email": "ada@example.com", "password": "nope12345"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
