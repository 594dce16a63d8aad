package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/request"
	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

type ExhibitionService interface {
	Create(ctx context.Context, actor domain.Actor, ex domain.Exhibition) (domain.Exhibition, error)
	Get(ctx context.Context, id uint) (domain.Exhibition, error)
	ListByOrganization(ctx context.Context, organizationID uint) ([]domain.Exhibition, error)
	Start(ctx context.Context, actor domain.Actor, id uint) (domain.Exhibition, error)
	Complete(ctx context.Context, actor domain.Actor, id uint) (domain.Exhibition, error)
	Cancel(ctx context.Context, actor domain.Actor, id uint, reason string) (domain.Exhibition, error)
}

type ExhibitionHandler struct {
	svc ExhibitionService
}

func NewExhibitionHandler(svc ExhibitionService) *ExhibitionHandler {
	return &ExhibitionHandler{
		svc: svc,
	}
}

// HandleCreateExhibition godoc
// @Summary      Create an exhibition
// @Description  Creates a DRAFT exhibition for an organization owned by the caller.
// @Tags         exhibitions
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateExhibitionRequest  true  "exhibition"
// @Success      201    {object}  domain.Exhibition
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Router       /exhibitions [post]
// @Security BearerAuth
func (h *ExhibitionHandler) HandleCreateExhibition(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateExhibitionRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ex, err := h.svc.Create(ctx.Request.Context(), actor, req.Exhibition())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateExhibition -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, ex)
}

// HandleGetExhibition godoc
// @Summary      Get an exhibition
// @Tags         exhibitions
// @Produce      json
// @Param        exhibitionID  path      int  true  "exhibition ID"
// @Success      200           {object}  domain.Exhibition
// @Failure      404           {object}  response.Err
// @Router       /exhibitions/{exhibitionID} [get]
// @Security BearerAuth
func (h *ExhibitionHandler) HandleGetExhibition(ctx *gin.Context) {
	id, respErr := paramID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ex, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetExhibition -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, ex)
}

// HandleListOrganizationExhibitions godoc
// @Summary      List an organization's exhibitions
// @Tags         exhibitions
// @Produce      json
// @Param        organizationID  path      int  true  "organization ID"
// @Success      200             {array}   domain.Exhibition
// @Failure      500             {object}  response.Err
// @Router       /organizations/{organizationID}/exhibitions [get]
// @Security BearerAuth
func (h *ExhibitionHandler) HandleListOrganizationExhibitions(ctx *gin.Context) {
	orgID, respErr := paramID(ctx, "organizationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	list, err := h.svc.ListByOrganization(ctx.Request.Context(), orgID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListOrganizationExhibitions -> h.svc.ListByOrganization -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, list)
}

// HandleStartExhibition godoc
// @Summary      Open a confirmed exhibition
// @Tags         exhibitions
// @Produce      json
// @Param        exhibitionID  path      int  true  "exhibition ID"
// @Success      200           {object}  domain.Exhibition
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/start [post]
// @Security BearerAuth
func (h *ExhibitionHandler) HandleStartExhibition(ctx *gin.Context) {
	h.transition(ctx, "HandleStartExhibition", h.svc.Start)
}

// HandleCompleteExhibition godoc
// @Summary      Close an active exhibition
// @Tags         exhibitions
// @Produce      json
// @Param        exhibitionID  path      int  true  "exhibition ID"
// @Success      200           {object}  domain.Exhibition
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/complete [post]
// @Security BearerAuth
func (h *ExhibitionHandler) HandleCompleteExhibition(ctx *gin.Context) {
	h.transition(ctx, "HandleCompleteExhibition", h.svc.Complete)
}

func (h *ExhibitionHandler) transition(
	ctx *gin.Context,
	name string,
	fn func(ctx context.Context, actor domain.Actor, id uint) (domain.Exhibition, error),
) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := paramID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ex, err := fn(ctx.Request.Context(), actor, id)
	if err != nil {
		err = fmt.Errorf("v1.%s -> %w", name, err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, ex)
}

// HandleCancelExhibition godoc
// @Summary      Cancel an exhibition
// @Description  Cancels the exhibition and every open participation. Municipality admins cancel on behalf of the venue.
// @Tags         exhibitions
// @Accept       json
// @Produce      json
// @Param        exhibitionID  path      int                    true  "exhibition ID"
// @Param        input         body      request.CancelRequest  true  "reason"
// @Success      200           {object}  domain.Exhibition
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/cancel [post]
// @Security BearerAuth
func (h *ExhibitionHandler) HandleCancelExhibition(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := paramID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CancelRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ex, err := h.svc.Cancel(ctx.Request.Context(), actor, id, req.Reason)
	if err != nil {
		err = fmt.Errorf("v1.HandleCancelExhibition -> h.svc.Cancel -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, ex)
}
