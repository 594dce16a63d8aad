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

type StudentService interface {
	Register(ctx context.Context, actor domain.Actor, exhibitionID uint) (domain.StudentRegistration, error)
	Approve(ctx context.Context, actor domain.Actor, registrationID uint) (domain.StudentRegistration, error)
	Cancel(ctx context.Context, actor domain.Actor, registrationID uint) (domain.StudentRegistration, error)
	MarkAttendance(ctx context.Context, actor domain.Actor, exhibitionID uint, registrationIDs []uint, attended bool) (service.AttendanceResult, error)
	SubmitFeedback(ctx context.Context, actor domain.Actor, exhibitionID uint, rating int, comments string) (domain.ExhibitionFeedback, error)
	ListFeedback(ctx context.Context, exhibitionID uint) ([]domain.ExhibitionFeedback, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]domain.StudentRegistration, error)
}

type StudentHandler struct {
	svc StudentService
}

func NewStudentHandler(svc StudentService) *StudentHandler {
	return &StudentHandler{
		svc: svc,
	}
}

// HandleRegisterStudent godoc
// @Summary      Register the calling student for an exhibition
// @Tags         students
// @Produce      json
// @Param        exhibitionID  path      int  true  "exhibition ID"
// @Success      201           {object}  domain.StudentRegistration
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/students [post]
// @Security BearerAuth
func (h *StudentHandler) HandleRegisterStudent(ctx *gin.Context) {
	actor, exID, respErr := actorAndID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	reg, err := h.svc.Register(ctx.Request.Context(), actor, exID)
	if err != nil {
		err = fmt.Errorf("v1.HandleRegisterStudent -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, reg)
}

// HandleListMyRegistrations godoc
// @Summary      List the calling student's registrations
// @Tags         students
// @Produce      json
// @Success      200  {array}   domain.StudentRegistration
// @Failure      403  {object}  response.Err
// @Router       /students/me/registrations [get]
// @Security BearerAuth
func (h *StudentHandler) HandleListMyRegistrations(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	list, err := h.svc.ListMine(ctx.Request.Context(), actor)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyRegistrations -> h.svc.ListMine -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, list)
}

// HandleApproveStudent godoc
// @Summary      Approve a student registration
// @Tags         students
// @Produce      json
// @Param        registrationID  path      int  true  "registration ID"
// @Success      200             {object}  domain.StudentRegistration
// @Failure      403             {object}  response.Err
// @Failure      409             {object}  response.Err
// @Router       /student-registrations/{registrationID}/approve [post]
// @Security BearerAuth
func (h *StudentHandler) HandleApproveStudent(ctx *gin.Context) {
	h.act(ctx, "HandleApproveStudent", h.svc.Approve)
}

// HandleCancelStudent godoc
// @Summary      Cancel a student registration
// @Tags         students
// @Produce      json
// @Param        registrationID  path      int  true  "registration ID"
// @Success      200             {object}  domain.StudentRegistration
// @Failure      403             {object}  response.Err
// @Failure      409             {object}  response.Err
// @Router       /student-registrations/{registrationID}/cancel [post]
// @Security BearerAuth
func (h *StudentHandler) HandleCancelStudent(ctx *gin.Context) {
	h.act(ctx, "HandleCancelStudent", h.svc.Cancel)
}

func (h *StudentHandler) act(
	ctx *gin.Context,
	name string,
	fn func(ctx context.Context, actor domain.Actor, id uint) (domain.StudentRegistration, error),
) {
	actor, id, respErr := actorAndID(ctx, "registrationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	reg, err := fn(ctx.Request.Context(), actor, id)
	if err != nil {
		err = fmt.Errorf("v1.%s -> %w", name, err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, reg)
}

// HandleStudentAttendance godoc
// @Summary      Mark students present or absent
// @Description  Registrations that cannot be marked are skipped and listed with the reason; the rest are still marked.
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        exhibitionID  path      int                        true  "exhibition ID"
// @Param        input         body      request.AttendanceRequest  true  "registrations"
// @Success      200           {object}  service.AttendanceResult
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/attendance [post]
// @Security BearerAuth
func (h *StudentHandler) HandleStudentAttendance(ctx *gin.Context) {
	actor, exID, respErr := actorAndID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.AttendanceRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	result, err := h.svc.MarkAttendance(ctx.Request.Context(), actor, exID, req.RegistrationIDs, *req.Attended)
	if err != nil {
		err = fmt.Errorf("v1.HandleStudentAttendance -> h.svc.MarkAttendance -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleSubmitFeedback godoc
// @Summary      Rate an exhibition the student attended
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        exhibitionID  path      int                      true  "exhibition ID"
// @Param        input         body      request.FeedbackRequest  true  "feedback"
// @Success      201           {object}  domain.ExhibitionFeedback
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/feedback [post]
// @Security BearerAuth
func (h *StudentHandler) HandleSubmitFeedback(ctx *gin.Context) {
	actor, exID, respErr := actorAndID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.FeedbackRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	fb, err := h.svc.SubmitFeedback(ctx.Request.Context(), actor, exID, req.Rating, req.Comments)
	if err != nil {
		err = fmt.Errorf("v1.HandleSubmitFeedback -> h.svc.SubmitFeedback -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, fb)
}

// HandleListFeedback godoc
// @Summary      List an exhibition's feedback
// @Tags         students
// @Produce      json
// @Param        exhibitionID  path      int  true  "exhibition ID"
// @Success      200           {array}   domain.ExhibitionFeedback
// @Router       /exhibitions/{exhibitionID}/feedback [get]
// @Security BearerAuth
func (h *StudentHandler) HandleListFeedback(ctx *gin.Context) {
	exID, respErr := paramID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	list, err := h.svc.ListFeedback(ctx.Request.Context(), exID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListFeedback -> h.svc.ListFeedback -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, list)
}
