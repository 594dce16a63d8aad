package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/careerexpo/exhibition-api/internal/domain"
)

// Err is the JSON body of every failed request.
type Err struct {
	Err        error          `json:"-"`
	StatusCode int            `json:"status"`
	StatusText string         `json:"error"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return e.Err.Error()
}

func (e *Err) Unwrap() error {
	return e.Err
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("internal server error",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.JSON(e.StatusCode, e)
}

func newErr(status int, err error, message string) *Err {
	return &Err{
		Err:        err,
		StatusCode: status,
		StatusText: http.StatusText(status),
		Message:    message,
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err, err.Error())
}

func ErrUnauthenticated(err error) *Err {
	return newErr(http.StatusUnauthorized, err, "missing or invalid token")
}

func ErrWrongCredentials(err error) *Err {
	return newErr(http.StatusUnauthorized, err, "wrong email or password")
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err, "permission denied")
}

func ErrNotFound(entity, key string, value any) *Err {
	err := fmt.Errorf("%s with %s %v: %w", entity, key, value, domain.ErrNotFound)

	return newErr(http.StatusNotFound, err, fmt.Sprintf("%s with %s %v not found", entity, key, value))
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err, message(err))
}

func ErrInternalServerError(err error) *Err {
	return newErr(http.StatusInternalServerError, err, "internal server error")
}

// ErrDomain maps a service error onto its HTTP status.
func ErrDomain(err error) *Err {
	var (
		capErr    *domain.CapacityError
		settleErr *domain.SettlementError
	)

	switch {
	case errors.As(err, &capErr):
		e := ErrConflict(err)
		e.Message = capErr.Error()
		e.Details = map[string]any{
			"requested": capErr.Requested,
			"remaining": capErr.Remaining,
		}
		if capErr.Cap > 0 {
			e.Details["cap"] = capErr.Cap
		}

		return e
	case errors.As(err, &settleErr):
		e := ErrConflict(err)
		e.Message = settleErr.Error()
		e.Details = map[string]any{"blocking": settleErr.Blocking}

		return e
	case errors.Is(err, domain.ErrNotFound):
		return newErr(http.StatusNotFound, err, message(err))
	case errors.Is(err, domain.ErrUnauthorized):
		return ErrPermissionDenied(err)
	case errors.Is(err, domain.ErrValidation):
		return newErr(http.StatusBadRequest, err, message(err))
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrLockedPhase),
		errors.Is(err, domain.ErrDeadlinePassed),
		errors.Is(err, domain.ErrIncompleteSettlement),
		errors.Is(err, domain.ErrNoConfirmedParticipants),
		errors.Is(err, domain.ErrVenueOverlap),
		errors.Is(err, domain.ErrDuplicateInvitation),
		errors.Is(err, domain.ErrAlreadyExists):
		return ErrConflict(err)
	default:
		return ErrInternalServerError(err)
	}
}

// message drops the call-path prefixes added while the error travelled up the layers.
func message(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, " -> "); i >= 0 {
		msg = msg[i+len(" -> "):]
	}

	return msg
}
