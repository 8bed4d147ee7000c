package handler

import (
	"errors"
	"net/http"
	"strconv"

	"digital-wallet/internal/adapter/http/dto"
	"digital-wallet/internal/adapter/http/middleware"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"
	"digital-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUser returns the caller set by the JWT middleware. It writes
// AUTH_003 and returns false when the route was reached without one.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized())
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes and validates the body into req, then sanitizes it.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.Validation("request body too large"))
			return false
		}
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.InvalidArgument("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// pageRequest reads ?page=N (default 1). The size comes from config and is
// not caller controlled; range checks are left to the services.
func pageRequest(c *gin.Context, pageSize int) (ports.PageRequest, bool) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, apperror.InvalidArgument("page must be an integer"))
			return ports.PageRequest{}, false
		}
		page = n
	}
	return ports.PageRequest{Page: page, PageSize: pageSize}, true
}
