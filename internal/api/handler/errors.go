package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/internal/service"
	"github.com/d60-Lab/tieba/pkg/response"
)

// fail 把领域错误映射为 HTTP 状态码
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, repository.ErrSelfReference),
		errors.Is(err, service.ErrInvalidArgument):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, repository.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, repository.ErrStorageUnavailable):
		response.Unavailable(c, err)
	default:
		response.InternalError(c, err)
	}
}
