package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/crew_server/internal/pkg/response"
	"github.com/qs3c/crew_server/internal/service"
)

// renderError 按错误类别返回业务码；存储错误不向客户端暴露细节
func renderError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	if kind == service.KindStorage {
		response.ServerError(c, "")
		return
	}

	msg := err.Error()
	switch kind {
	case service.KindNotFound:
		response.NotFoundError(c, msg)
	case service.KindDuplicateInteraction, service.KindAlreadyActiveMember:
		response.DuplicateError(c, msg)
	case service.KindAlreadyRejected, service.KindInvalidApplicant, service.KindTeamClosed:
		response.StateError(c, msg)
	case service.KindForbidden:
		response.PermissionError(c, msg)
	case service.KindMissingLeader:
		response.Error(c, response.CodeMissingLeader, msg)
	case service.KindInvalidCategory:
		response.ParamError(c, msg)
	default:
		response.ServerError(c, "")
	}
}
