package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/request"
	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

type BoothService interface {
	List(ctx context.Context, exhibitionID uint) ([]domain.Booth, error)
	Reassign(ctx context.Context, actor domain.Actor, exhibitionID uint, allocations []domain.BoothAllocation, schedule json.RawMessage) error
}

type BoothHandler struct {
	svc BoothService
}

func NewBoothHandler(svc BoothService) *BoothHandler {
	return &BoothHandler{
		svc: svc,
	}
}

// HandleListBooths godoc
// @Summary      List an exhibition's booths
// @Tags         booths
// @Produce      json
// @Param        exhibitionID  path      int  true  "exhibition ID"
// @Success      200           {array}   domain.Booth
// @Failure      404           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/booths [get]
// @Security BearerAuth
func (h *BoothHandler) HandleListBooths(ctx *gin.Context) {
	exID, respErr := paramID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	booths, err := h.svc.List(ctx.Request.Context(), exID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListBooths -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, booths)
}

// HandleReassignBooths godoc
// @Summary      Move booths to zones and numbers
// @Description  Optionally stores a floor plan, which is only accepted while the exhibition is planning.
// @Tags         booths
// @Accept       json
// @Produce      json
// @Param        exhibitionID  path      int                            true  "exhibition ID"
// @Param        input         body      request.ReassignBoothsRequest  true  "allocations"
// @Success      200           {array}   domain.Booth
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/booths [put]
// @Security BearerAuth
func (h *BoothHandler) HandleReassignBooths(ctx *gin.Context) {
	actor, exID, respErr := actorAndID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReassignBoothsRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Reassign(ctx.Request.Context(), actor, exID, req.Allocations, req.Schedule); err != nil {
		err = fmt.Errorf("v1.HandleReassignBooths -> h.svc.Reassign -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	booths, err := h.svc.List(ctx.Request.Context(), exID)
	if err != nil {
		err = fmt.Errorf("v1.HandleReassignBooths -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, booths)
}
