package restapi

import (
	"errors"
	"net/http"

	"wallet_report/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps a service error onto an HTTP status code.
func statusFor(err error) int {
	var upErr *entity.UpstreamError
	switch {
	case errors.Is(err, entity.ErrInvalidWalletAddress),
		errors.Is(err, entity.ErrInvalidNFTReference),
		errors.Is(err, entity.ErrUnsupportedBlockchain):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNarrativeFailed), errors.Is(err, entity.ErrReportFailed):
		return http.StatusInternalServerError
	case errors.As(err, &upErr):
		switch upErr.Kind {
		case entity.UpstreamTimeout:
			return http.StatusGatewayTimeout
		case entity.UpstreamStatus:
			if upErr.StatusCode >= 400 && upErr.StatusCode <= 599 {
				return upErr.StatusCode
			}
			return http.StatusBadGateway
		default:
			return http.StatusBadGateway
		}
	case errors.Is(err, entity.ErrNFTInsightUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: err.Error()})
}
