package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/request"
	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/service"
)

type ParticipationService interface {
	Invite(ctx context.Context, actor domain.Actor, in service.InviteInput) (domain.Participation, error)
	Register(ctx context.Context, actor domain.Actor, id uint, in service.RegisterInput) (domain.Participation, error)
	Propose(ctx context.Context, actor domain.Actor, id uint, in service.ProposeInput) (domain.Participation, error)
	Review(ctx context.Context, actor domain.Actor, id uint, approve bool, response string) (domain.Participation, error)
	ConfirmPayment(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error)
	Confirm(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error)
	Finalize(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error)
	MarkAttendance(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error)
	Cancel(ctx context.Context, actor domain.Actor, id uint, reason string) (domain.Participation, error)
	Get(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error)
	ListByExhibition(ctx context.Context, actor domain.Actor, exhibitionID uint, kind domain.Kind) ([]domain.Participation, error)
}

// ParticipationHandler exposes the invitation workflow shared by universities, schools and
// activity providers.
type ParticipationHandler struct {
	svc ParticipationService
}

func NewParticipationHandler(svc ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{
		svc: svc,
	}
}

// HandleInvite godoc
// @Summary      Invite an institution to an exhibition
// @Tags         participations
// @Accept       json
// @Produce      json
// @Param        exhibitionID  path      int                    true  "exhibition ID"
// @Param        input         body      request.InviteRequest  true  "invitation"
// @Success      201           {object}  domain.Participation
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/participations [post]
// @Security BearerAuth
func (h *ParticipationHandler) HandleInvite(ctx *gin.Context) {
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

	var req request.InviteRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	p, err := h.svc.Invite(ctx.Request.Context(), actor, service.InviteInput{
		ExhibitionID:     exID,
		Kind:             req.Kind,
		InstitutionID:    req.InstitutionID,
		Fee:              req.Fee,
		OrgRequirements:  req.OrgRequirements,
		ResponseDeadline: req.ResponseDeadline,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleInvite -> h.svc.Invite -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

// HandleListParticipations godoc
// @Summary      List an exhibition's participations
// @Tags         participations
// @Produce      json
// @Param        exhibitionID  path      int     true   "exhibition ID"
// @Param        kind          query     string  false  "UNIVERSITY, SCHOOL or PROVIDER"
// @Success      200           {array}   domain.Participation
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/participations [get]
// @Security BearerAuth
func (h *ParticipationHandler) HandleListParticipations(ctx *gin.Context) {
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

	var q request.ListParticipationsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	list, err := h.svc.ListByExhibition(ctx.Request.Context(), actor, exID, q.Kind)
	if err != nil {
		err = fmt.Errorf("v1.HandleListParticipations -> h.svc.ListByExhibition -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, list)
}

// HandleGetParticipation godoc
// @Summary      Get a participation
// @Tags         participations
// @Produce      json
// @Param        participationID  path      int  true  "participation ID"
// @Success      200              {object}  domain.Participation
// @Failure      403              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Router       /participations/{participationID} [get]
// @Security BearerAuth
func (h *ParticipationHandler) HandleGetParticipation(ctx *gin.Context) {
	h.act(ctx, "HandleGetParticipation", h.svc.Get)
}

// HandleRegister godoc
// @Summary      Accept an invitation as a university or school
// @Description  Universities reserve their requested booths here; 409 with remaining when capacity is short.
// @Tags         participations
// @Accept       json
// @Produce      json
// @Param        participationID  path      int                                   true  "participation ID"
// @Param        input            body      request.RegisterParticipationRequest  true  "registration"
// @Success      200              {object}  domain.Participation
// @Failure      400              {object}  response.Err
// @Failure      403              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Router       /participations/{participationID}/register [post]
// @Security BearerAuth
func (h *ParticipationHandler) HandleRegister(ctx *gin.Context) {
	actor, id, respErr := actorAndID(ctx, "participationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RegisterParticipationRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	p, err := h.svc.Register(ctx.Request.Context(), actor, id, service.RegisterInput{
		RequestedBooths:  req.RequestedBooths,
		BoothDetails:     req.BoothDetails,
		ExpectedVisitors: req.ExpectedVisitors,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// HandlePropose godoc
// @Summary      Submit an activity provider's proposal
// @Tags         participations
// @Accept       json
// @Produce      json
// @Param        participationID  path      int                     true  "participation ID"
// @Param        input            body      request.ProposeRequest  true  "proposal"
// @Success      200              {object}  domain.Participation
// @Failure      400              {object}  response.Err
// @Failure      403              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Router       /participations/{participationID}/propose [post]
// @Security BearerAuth
func (h *ParticipationHandler) HandlePropose(ctx *gin.Context) {
	actor, id, respErr := actorAndID(ctx, "participationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ProposeRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	p, err := h.svc.Propose(ctx.Request.Context(), actor, id, service.ProposeInput{
		Proposal:         req.Proposal,
		Cost:             req.Cost,
		ActivityIDs:      req.ActivityIDs,
		ExpectedVisitors: req.ExpectedVisitors,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandlePropose -> h.svc.Propose -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// HandleReview godoc
// @Summary      Approve or reject a submitted participation
// @Tags         participations
// @Accept       json
// @Produce      json
// @Param        participationID  path      int                    true  "participation ID"
// @Param        input            body      request.ReviewRequest  true  "verdict"
// @Success      200              {object}  domain.Participation
// @Failure      400              {object}  response.Err
// @Failure      403              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Router       /participations/{participationID}/review [post]
// @Security BearerAuth
func (h *ParticipationHandler) HandleReview(ctx *gin.Context) {
	actor, id, respErr := actorAndID(ctx, "participationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReviewRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	p, err := h.svc.Review(ctx.Request.Context(), actor, id, *req.Approve, req.Response)
	if err != nil {
		err = fmt.Errorf("v1.HandleReview -> h.svc.Review -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// HandleConfirmPayment godoc
// @Summary      Record a university's payment
// @Tags         participations
// @Produce      json
// @Param        participationID  path      int  true  "participation ID"
// @Success      200              {object}  domain.Participation
// @Failure      403              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Router       /participations/{participationID}/confirm-payment [post]
// @Security BearerAuth
func (h *ParticipationHandler) HandleConfirmPayment(ctx *gin.Context) {
	h.act(ctx, "HandleConfirmPayment", h.svc.ConfirmPayment)
}

// HandleConfirm godoc
// @Summary      Confirm an approved participation
// @Tags         participations
// @Produce      json
// @Param        participationID  path      int  true  "participation ID"
// @Success      200              {object}  domain.Participation
// @Failure      403              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Router       /participations/{participationID}/confirm [post]
// @Security BearerAuth
func (h *ParticipationHandler) HandleConfirm(ctx *gin.Context) {
	h.act(ctx, "HandleConfirm", h.svc.Confirm)
}

// HandleFinalize godoc
// @Summary      Finalize a confirmed participation
// @Tags         participations
// @Produce      json
// @Param        participationID  path      int  true  "participation ID"
// @Success      200              {object}  domain.Participation
// @Failure      403              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Router       /participations/{participationID}/finalize [post]
// @Security BearerAuth
func (h *ParticipationHandler) HandleFinalize(ctx *gin.Context) {
	h.act(ctx, "HandleFinalize", h.svc.Finalize)
}

// HandleMarkAttendance godoc
// @Summary      Mark a participant as present
// @Tags         participations
// @Produce      json
// @Param        participationID  path      int  true  "participation ID"
// @Success      200              {object}  domain.Participation
// @Failure      403              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Router       /participations/{participationID}/attendance [post]
// @Security BearerAuth
func (h *ParticipationHandler) HandleMarkAttendance(ctx *gin.Context) {
	h.act(ctx, "HandleMarkAttendance", h.svc.MarkAttendance)
}

// HandleCancel godoc
// @Summary      Withdraw a participation
// @Tags         participations
// @Accept       json
// @Produce      json
// @Param        participationID  path      int                      true   "participation ID"
// @Param        input            body      request.WithdrawRequest  false  "reason"
// @Success      200              {object}  domain.Participation
// @Failure      403              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Router       /participations/{participationID}/cancel [post]
// @Security BearerAuth
func (h *ParticipationHandler) HandleCancel(ctx *gin.Context) {
	actor, id, respErr := actorAndID(ctx, "participationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.WithdrawRequest
	if respErr = bindOptionalJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	p, err := h.svc.Cancel(ctx.Request.Context(), actor, id, req.Reason)
	if err != nil {
		err = fmt.Errorf("v1.HandleCancel -> h.svc.Cancel -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ParticipationHandler) act(
	ctx *gin.Context,
	name string,
	fn func(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error),
) {
	actor, id, respErr := actorAndID(ctx, "participationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	p, err := fn(ctx.Request.Context(), actor, id)
	if err != nil {
		err = fmt.Errorf("v1.%s -> %w", name, err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, p)
}
