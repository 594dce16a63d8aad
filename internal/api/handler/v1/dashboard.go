package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

type DashboardService interface {
	Overview(ctx context.Context, actor domain.Actor, organizationID uint) (domain.Overview, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{
		svc: svc,
	}
}

// HandleOverview godoc
// @Summary      Exhibition totals and money
// @Description  Without organization_id the overview covers every organization and needs the DEVELOPER role.
// @Tags         dashboard
// @Produce      json
// @Param        organization_id  query     int  false  "organization ID"
// @Success      200              {object}  domain.Overview
// @Failure      400              {object}  response.Err
// @Failure      403              {object}  response.Err
// @Router       /dashboard/overview [get]
// @Security BearerAuth
func (h *DashboardHandler) HandleOverview(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var orgID uint64
	if raw := ctx.Query("organization_id"); raw != "" {
		var err error
		if orgID, err = strconv.ParseUint(raw, 10, 64); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid organization_id %q", raw)))
			return
		}
	}

	overview, err := h.svc.Overview(ctx.Request.Context(), actor, uint(orgID))
	if err != nil {
		err = fmt.Errorf("v1.HandleOverview -> h.svc.Overview -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, overview)
}
