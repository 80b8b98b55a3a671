package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/crew_server/internal/api/middleware"
	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/model/dto"
	"github.com/qs3c/crew_server/internal/pkg/response"
	"github.com/qs3c/crew_server/internal/service"
)

type TeamHandler struct {
	teams   *service.TeamService
	members *service.MembershipService
}

func NewTeamHandler(teams *service.TeamService, members *service.MembershipService) *TeamHandler {
	return &TeamHandler{
		teams:   teams,
		members: members,
	}
}

// teamTarget 解析 :kind 和 :id，失败时已写入响应
func teamTarget(c *gin.Context) (model.TeamKind, int64, bool) {
	kind := model.TeamKind(c.Param("kind"))
	if !kind.Valid() {
		response.ParamError(c, "无效的团队类型")
		return "", 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的团队ID")
		return "", 0, false
	}
	return kind, id, true
}

func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
	}
	return userID, ok
}

// Create 创建团队
// POST /api/v1/teams/:kind
func (h *TeamHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind := model.TeamKind(c.Param("kind"))
	if !kind.Valid() {
		response.ParamError(c, "无效的团队类型")
		return
	}

	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.teams.Create(c.Request.Context(), kind, userID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", detail)
}

// List 团队列表
// GET /api/v1/teams/:kind?offset=&limit=&recruiting_only=
func (h *TeamHandler) List(c *gin.Context) {
	kind := model.TeamKind(c.Param("kind"))
	if !kind.Valid() {
		response.ParamError(c, "无效的团队类型")
		return
	}

	var req dto.ListTeamsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.teams.List(c.Request.Context(), kind, req)
	if err != nil {
		renderError(c, err)
		return
	}

	response.SuccessPage(c, total, req.Offset, req.Limit, items)
}

// Get 团队详情（含在组成员）
// GET /api/v1/teams/:kind/:id
func (h *TeamHandler) Get(c *gin.Context) {
	kind, teamID, ok := teamTarget(c)
	if !ok {
		return
	}

	detail, err := h.teams.Get(c.Request.Context(), kind, teamID)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, detail)
}

// Update 修改团队信息
// PATCH /api/v1/teams/:kind/:id
func (h *TeamHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, teamID, ok := teamTarget(c)
	if !ok {
		return
	}

	var req dto.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.teams.Update(c.Request.Context(), kind, teamID, userID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, detail)
}

// Close 停止招募
// POST /api/v1/teams/:kind/:id/close
func (h *TeamHandler) Close(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, teamID, ok := teamTarget(c)
	if !ok {
		return
	}

	detail, err := h.teams.Close(c.Request.Context(), kind, teamID, userID)
	if err != nil {
		renderError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已停止招募", detail)
}

// Delete 删除团队
// DELETE /api/v1/teams/:kind/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, teamID, ok := teamTarget(c)
	if !ok {
		return
	}

	if err := h.teams.Delete(c.Request.Context(), kind, teamID, userID); err != nil {
		renderError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Apply 申请加入
// POST /api/v1/teams/:kind/:id/applications
func (h *TeamHandler) Apply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, teamID, ok := teamTarget(c)
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	view, err := h.members.Apply(c.Request.Context(), kind, teamID, userID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	response.SuccessWithMessage(c, "申请已提交", view)
}

// CancelApplication 取消自己的申请
// DELETE /api/v1/teams/:kind/:id/applications
func (h *TeamHandler) CancelApplication(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, teamID, ok := teamTarget(c)
	if !ok {
		return
	}

	view, err := h.members.Cancel(c.Request.Context(), kind, teamID, userID)
	if err != nil {
		renderError(c, err)
		return
	}

	response.SuccessWithMessage(c, "申请已取消", view)
}

// Applicants 待审核申请
// GET /api/v1/teams/:kind/:id/applicants
func (h *TeamHandler) Applicants(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, teamID, ok := teamTarget(c)
	if !ok {
		return
	}

	views, err := h.teams.Applicants(c.Request.Context(), kind, teamID, userID)
	if err != nil {
		renderError(c, err)
		return
	}

	response.Success(c, views)
}

// Accept 通过申请
// POST /api/v1/teams/:kind/:id/applicants/:user_id/accept
func (h *TeamHandler) Accept(c *gin.Context) {
	h.review(c, h.members.Accept, "已通过申请")
}

// Reject 拒绝申请
// POST /api/v1/teams/:kind/:id/applicants/:user_id/reject
func (h *TeamHandler) Reject(c *gin.Context) {
	h.review(c, h.members.Reject, "已拒绝申请")
}

type reviewFunc func(ctx context.Context, kind model.TeamKind, teamID, actingID, applicantID int64) (*dto.MembershipView, error)

func (h *TeamHandler) review(c *gin.Context, fn reviewFunc, message string) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, teamID, ok := teamTarget(c)
	if !ok {
		return
	}
	applicantID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || applicantID <= 0 {
		response.ParamError(c, "无效的用户ID")
		return
	}

	view, err := fn(c.Request.Context(), kind, teamID, userID, applicantID)
	if err != nil {
		renderError(c, err)
		return
	}

	response.SuccessWithMessage(c, message, view)
}

// AddMember 组长直接添加成员
// POST /api/v1/teams/:kind/:id/members
func (h *TeamHandler) AddMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, teamID, ok := teamTarget(c)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	view, err := h.members.AddMember(c.Request.Context(), kind, teamID, userID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	response.SuccessWithMessage(c, "成员已添加", view)
}
