package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Error reasons carried in the "reason" field of error bodies. The HTTP
// client maps them back to the sentinel errors of pkg/types.
const (
	ReasonNotFound    = "not_found"
	ReasonInvalidID   = "invalid_id"
	ReasonInvalidData = "invalid_data"
	ReasonDetached    = "detached"
	ReasonInternal    = "internal"
)

// ErrorBody is the JSON envelope of every error response.
type ErrorBody struct {
	OK      int    `json:"ok"`
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// DraftBody carries a draft value.
type DraftBody struct {
	Value string `json:"value"`
}

// listBody wraps slices as {"data": [...]}.
type listBody[T any] struct {
	Data []T `json:"data"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func list[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, listBody[T]{Data: items})
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func badRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, ReasonInvalidData, message)
}

// fail maps a storage error to a status and reason.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		abort(c, http.StatusNotFound, ReasonNotFound, err.Error())
	case errors.Is(err, types.ErrInvalidID):
		abort(c, http.StatusBadRequest, ReasonInvalidID, err.Error())
	case errors.Is(err, types.ErrInvalidData):
		abort(c, http.StatusBadRequest, ReasonInvalidData, err.Error())
	case errors.Is(err, types.ErrDetached):
		abort(c, http.StatusServiceUnavailable, ReasonDetached, err.Error())
	default:
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, ReasonInternal, err.Error())
	}
}

func abort(c *gin.Context, status int, reason, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{OK: 0, Code: status, Reason: reason, Message: message})
}
