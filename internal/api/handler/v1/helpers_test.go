package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/api/middleware"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

var (
	orgOwner = domain.Actor{UserID: 1, Role: domain.RoleOrgOwner}
	uniAdmin = domain.Actor{UserID: 2, Role: domain.RoleUniversityAdmin}
	student  = domain.Actor{UserID: 6, Role: domain.RoleStudent}
)

// newRouter mounts h at method/path behind a stand-in for the JWT middleware.
func newRouter(actor *domain.Actor, method, path string, h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, path, func(ctx *gin.Context) {
		if actor != nil {
			ctx.Set(middleware.ContextUserID, actor.UserID)
			ctx.Set(middleware.ContextRole, string(actor.Role))
		}
		ctx.Next()
	}, h)

	return r
}

func do(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) response.Err {
	t.Helper()

	var body response.Err
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}
