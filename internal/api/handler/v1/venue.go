package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/request"
	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

type VenueService interface {
	RequestVenue(ctx context.Context, actor domain.Actor, exhibitionID, venueID uint, notes string, responseDeadline *time.Time) (domain.VenueRequest, error)
	Review(ctx context.Context, actor domain.Actor, requestID uint, approve bool, response string) (domain.VenueRequest, error)
	ListRequests(ctx context.Context, actor domain.Actor, exhibitionID uint) ([]domain.VenueRequest, error)
}

type VenueHandler struct {
	svc VenueService
}

func NewVenueHandler(svc VenueService) *VenueHandler {
	return &VenueHandler{
		svc: svc,
	}
}

// HandleRequestVenue godoc
// @Summary      Ask a municipality for a venue
// @Tags         venues
// @Accept       json
// @Produce      json
// @Param        exhibitionID  path      int                          true  "exhibition ID"
// @Param        input         body      request.VenueRequestRequest  true  "venue request"
// @Success      201           {object}  domain.VenueRequest
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/venue-requests [post]
// @Security BearerAuth
func (h *VenueHandler) HandleRequestVenue(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	exID, respErr := paramID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.VenueRequestRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	vr, err := h.svc.RequestVenue(ctx.Request.Context(), actor, exID, req.VenueID, req.Notes, req.ResponseDeadline)
	if err != nil {
		err = fmt.Errorf("v1.HandleRequestVenue -> h.svc.RequestVenue -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, vr)
}

// HandleListVenueRequests godoc
// @Summary      List an exhibition's venue requests
// @Tags         venues
// @Produce      json
// @Param        exhibitionID  path      int  true  "exhibition ID"
// @Success      200           {array}   domain.VenueRequest
// @Failure      403           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/venue-requests [get]
// @Security BearerAuth
func (h *VenueHandler) HandleListVenueRequests(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	exID, respErr := paramID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	list, err := h.svc.ListRequests(ctx.Request.Context(), actor, exID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListVenueRequests -> h.svc.ListRequests -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, list)
}

// HandleReviewVenueRequest godoc
// @Summary      Approve or reject a venue request
// @Description  Approval fails with 409 when the venue is already booked for overlapping dates.
// @Tags         venues
// @Accept       json
// @Produce      json
// @Param        requestID  path      int                    true  "venue request ID"
// @Param        input      body      request.ReviewRequest  true  "verdict"
// @Success      200        {object}  domain.VenueRequest
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /venue-requests/{requestID}/review [post]
// @Security BearerAuth
func (h *VenueHandler) HandleReviewVenueRequest(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := paramID(ctx, "requestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReviewRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	vr, err := h.svc.Review(ctx.Request.Context(), actor, id, *req.Approve, req.Response)
	if err != nil {
		err = fmt.Errorf("v1.HandleReviewVenueRequest -> h.svc.Review -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, vr)
}
