package server

import (
	"errors"
	"net/http"

	formdomain "github.com/heysheet/heysheet/internal/form/domain"
	"github.com/heysheet/heysheet/internal/storage"
	submissiondomain "github.com/heysheet/heysheet/internal/submission/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var policyErr *storage.PolicyError
	if errors.As(err, &policyErr) {
		return http.StatusForbidden, errorPayload{
			Type:    "upload_rejected",
			Message: policyErr.Reason,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, formdomain.ErrFormNotFound),
		errors.Is(err, submissiondomain.ErrFormNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "form not found",
		}
	case errors.Is(err, formdomain.ErrNotOwner),
		errors.Is(err, submissiondomain.ErrNotOwner):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, submissiondomain.ErrDomainNotAllowed):
		return http.StatusForbidden, errorPayload{
			Type:    "domain_not_allowed",
			Message: "submissions from this domain are not allowed",
		}
	case errors.Is(err, submissiondomain.ErrSubscriptionExpired):
		return http.StatusForbidden, errorPayload{
			Type:    "subscription_expired",
			Message: "subscription has expired",
		}
	case errors.Is(err, submissiondomain.ErrLimitReached):
		return http.StatusForbidden, errorPayload{
			Type:    "limit_reached",
			Message: "monthly submission limit reached",
		}
	case errors.Is(err, submissiondomain.ErrRateLimited):
		return http.StatusForbidden, errorPayload{
			Type:    "rate_limited",
			Message: "too many submissions, slow down",
		}
	case errors.Is(err, formdomain.ErrInvalidTitle),
		errors.Is(err, formdomain.ErrInvalidSlug):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, formdomain.ErrSlugTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "slug is already in use",
		}
	case errors.Is(err, formdomain.ErrFormLimit):
		return http.StatusForbidden, errorPayload{
			Type:    "limit_reached",
			Message: "form limit reached for this plan",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}
