package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/api/middleware"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

var errNoActor = errors.New("no authenticated user in context")

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getActor reads the caller stored by the JWT middleware.
func getActor(ctx *gin.Context) (domain.Actor, *response.Err) {
	userID, ok := ctx.Get(middleware.ContextUserID)
	if !ok {
		return domain.Actor{}, response.ErrUnauthenticated(errNoActor)
	}

	id, ok := userID.(uint)
	if !ok || id == 0 {
		return domain.Actor{}, response.ErrUnauthenticated(errNoActor)
	}

	return domain.Actor{
		UserID: id,
		Role:   domain.Role(ctx.GetString(middleware.ContextRole)),
	}, nil
}

func paramID(ctx *gin.Context, name string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, ctx.Param(name)))
	}

	return uint(id), nil
}

// bindJSON decodes the body into req and runs its validation.
func bindJSON(ctx *gin.Context, req interface{ Validate() error }) *response.Err {
	if err := ctx.ShouldBindJSON(req); err != nil {
		return response.ErrBadRequest(err)
	}

	if err := req.Validate(); err != nil {
		return response.ErrBadRequest(err)
	}

	return nil
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted.
func bindOptionalJSON(ctx *gin.Context, req interface{ Validate() error }) *response.Err {
	if ctx.Request.ContentLength == 0 {
		return nil
	}

	return bindJSON(ctx, req)
}

func actorAndID(ctx *gin.Context, param string) (domain.Actor, uint, *response.Err) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		return domain.Actor{}, 0, respErr
	}

	id, respErr := paramID(ctx, param)
	if respErr != nil {
		return domain.Actor{}, 0, respErr
	}

	return actor, id, nil
}
