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

type DirectoryService interface {
	CreateOrganization(ctx context.Context, actor domain.Actor, org domain.Organization) (domain.Organization, error)
	CreateMunicipality(ctx context.Context, actor domain.Actor, m domain.Municipality) (domain.Municipality, error)
	CreateVenue(ctx context.Context, actor domain.Actor, v domain.Venue) (domain.Venue, error)
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	CreateInstitution(ctx context.Context, actor domain.Actor, i domain.Institution) (domain.Institution, error)
	CreateActivity(ctx context.Context, actor domain.Actor, a domain.Activity) (domain.Activity, error)
}

// DirectoryHandler manages the organizations, municipalities, venues and institutions that
// exhibitions refer to.
type DirectoryHandler struct {
	svc DirectoryService
}

func NewDirectoryHandler(svc DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{
		svc: svc,
	}
}

// HandleCreateOrganization godoc
// @Summary      Create an organization owned by the caller
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateOrganizationRequest  true  "organization"
// @Success      201    {object}  domain.Organization
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Router       /organizations [post]
// @Security BearerAuth
func (h *DirectoryHandler) HandleCreateOrganization(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateOrganizationRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	org, err := h.svc.CreateOrganization(ctx.Request.Context(), actor, domain.Organization{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateOrganization -> h.svc.CreateOrganization -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, org)
}

// HandleCreateMunicipality godoc
// @Summary      Create a municipality administered by the caller
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateMunicipalityRequest  true  "municipality"
// @Success      201    {object}  domain.Municipality
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Router       /municipalities [post]
// @Security BearerAuth
func (h *DirectoryHandler) HandleCreateMunicipality(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateMunicipalityRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	m, err := h.svc.CreateMunicipality(ctx.Request.Context(), actor, domain.Municipality{Name: req.Name})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateMunicipality -> h.svc.CreateMunicipality -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, m)
}

// HandleCreateVenue godoc
// @Summary      Add a venue to a municipality
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        municipalityID  path      int                         true  "municipality ID"
// @Param        input           body      request.CreateVenueRequest  true  "venue"
// @Success      201             {object}  domain.Venue
// @Failure      400             {object}  response.Err
// @Failure      403             {object}  response.Err
// @Failure      404             {object}  response.Err
// @Router       /municipalities/{municipalityID}/venues [post]
// @Security BearerAuth
func (h *DirectoryHandler) HandleCreateVenue(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	municipalityID, respErr := paramID(ctx, "municipalityID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateVenueRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	venue, err := h.svc.CreateVenue(ctx.Request.Context(), actor, req.Venue(municipalityID))
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateVenue -> h.svc.CreateVenue -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, venue)
}

// HandleListVenues godoc
// @Summary      List active venues
// @Tags         directory
// @Produce      json
// @Success      200  {array}   domain.Venue
// @Failure      500  {object}  response.Err
// @Router       /venues [get]
// @Security BearerAuth
func (h *DirectoryHandler) HandleListVenues(ctx *gin.Context) {
	venues, err := h.svc.ListVenues(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListVenues -> h.svc.ListVenues -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, venues)
}

// HandleCreateInstitution godoc
// @Summary      Register a university, school or activity provider
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateInstitutionRequest  true  "institution"
// @Success      201    {object}  domain.Institution
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Router       /institutions [post]
// @Security BearerAuth
func (h *DirectoryHandler) HandleCreateInstitution(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateInstitutionRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	inst, err := h.svc.CreateInstitution(ctx.Request.Context(), actor, domain.Institution{
		Kind:         req.Kind,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateInstitution -> h.svc.CreateInstitution -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, inst)
}

// HandleCreateActivity godoc
// @Summary      Add an activity to a provider's catalog
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        institutionID  path      int                            true  "provider institution ID"
// @Param        input          body      request.CreateActivityRequest  true  "activity"
// @Success      201            {object}  domain.Activity
// @Failure      400            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Router       /institutions/{institutionID}/activities [post]
// @Security BearerAuth
func (h *DirectoryHandler) HandleCreateActivity(ctx *gin.Context) {
	actor, respErr := getActor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	providerID, respErr := paramID(ctx, "institutionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateActivityRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	activity, err := h.svc.CreateActivity(ctx.Request.Context(), actor, req.Activity(providerID))
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateActivity -> h.svc.CreateActivity -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, activity)
}
