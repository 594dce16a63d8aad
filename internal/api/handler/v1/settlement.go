package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/request"
	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/service"
)

type SettlementService interface {
	Settle(ctx context.Context, actor domain.Actor, exhibitionID uint, finalizationDeadline *time.Time) (domain.Exhibition, error)
	GetFinancial(ctx context.Context, actor domain.Actor, exhibitionID uint) (domain.ExhibitionFinancial, error)
	RecommendedFee(ctx context.Context, actor domain.Actor, exhibitionID uint, expected int, margin decimal.Decimal) (service.FeeRecommendation, error)
}

type SettlementHandler struct {
	svc SettlementService
}

func NewSettlementHandler(svc SettlementService) *SettlementHandler {
	return &SettlementHandler{
		svc: svc,
	}
}

// HandleSettle godoc
// @Summary      Settle a planning exhibition
// @Description  Fails with 409 and the blocking participation ids while any participation is not ready.
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        exhibitionID  path      int                    true   "exhibition ID"
// @Param        input         body      request.SettleRequest  false  "finalization deadline"
// @Success      200           {object}  domain.Exhibition
// @Failure      403           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/settle [post]
// @Security BearerAuth
func (h *SettlementHandler) HandleSettle(ctx *gin.Context) {
	actor, exID, respErr := actorAndID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SettleRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
	}

	ex, err := h.svc.Settle(ctx.Request.Context(), actor, exID, req.FinalizationDeadline)
	if err != nil {
		err = fmt.Errorf("v1.HandleSettle -> h.svc.Settle -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, ex)
}

// HandleGetFinancial godoc
// @Summary      Get the financial record written at settlement
// @Tags         settlement
// @Produce      json
// @Param        exhibitionID  path      int  true  "exhibition ID"
// @Success      200           {object}  domain.ExhibitionFinancial
// @Failure      403           {object}  response.Err
// @Failure      404           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/financial [get]
// @Security BearerAuth
func (h *SettlementHandler) HandleGetFinancial(ctx *gin.Context) {
	actor, exID, respErr := actorAndID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	fin, err := h.svc.GetFinancial(ctx.Request.Context(), actor, exID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetFinancial -> h.svc.GetFinancial -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, fin)
}

// HandleRecommendedFee godoc
// @Summary      Suggest a university fee covering venue rental and provider costs
// @Tags         settlement
// @Produce      json
// @Param        exhibitionID           path      int     true   "exhibition ID"
// @Param        expected_universities  query     int     false  "universities the fee is spread over, defaults to those taking part"
// @Param        margin                 query     string  false  "profit margin as a fraction, e.g. 0.2"
// @Success      200           {object}  service.FeeRecommendation
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/recommended-fee [get]
// @Security BearerAuth
func (h *SettlementHandler) HandleRecommendedFee(ctx *gin.Context) {
	actor, exID, respErr := actorAndID(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var q request.RecommendedFeeQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	margin, err := q.Decimal()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid margin: %w", err)))
		return
	}

	rec, err := h.svc.RecommendedFee(ctx.Request.Context(), actor, exID, q.ExpectedUniversities, margin)
	if err != nil {
		err = fmt.Errorf("v1.HandleRecommendedFee -> h.svc.RecommendedFee -> %w", err)
		response.RenderErr(ctx, response.ErrDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, rec)
}
