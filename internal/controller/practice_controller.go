package controller

import (
	"strconv"

	"github.com/Erkezh/studypoint-edu/internal/service"
	"github.com/Erkezh/studypoint-edu/internal/util"
	"github.com/gin-gonic/gin"
)

// PracticeController 练习会话接口
type PracticeController struct {
	PracticeService *service.PracticeService
}

func NewPracticeController(practiceService *service.PracticeService) *PracticeController {
	return &PracticeController{PracticeService: practiceService}
}

// StartSessionRequest 开始练习请求
// swagger:model StartSessionRequest
type StartSessionRequest struct {
	SkillID uint `json:"skillId" binding:"required"`
}

// StartSession godoc
// @Summary 开始或继续练习
// @Description 返回该技能上未结束的会话，否则创建新会话并出第一题
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "幂等键"
// @Param request body StartSessionRequest true "技能"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "技能不存在或没有题目"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/practice/sessions [post]
func (c *PracticeController) StartSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.PracticeService.Start(ctx.Request.Context(), user.UserID, req.SkillID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// GetSession godoc
// @Summary 获取练习会话
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/practice/sessions/{id} [get]
func (c *PracticeController) GetSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.PracticeService.Get(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// NextQuestion godoc
// @Summary 下一题
// @Description 当前题未作答时返回同一题
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.NextResult}
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 500 {object} util.Response "题目配置错误"
// @Router /api/practice/sessions/{id}/next [post]
func (c *PracticeController) NextQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	next, err := c.PracticeService.Next(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, next)
}

// Submit godoc
// @Summary 提交答案
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param Idempotency-Key header string false "幂等键"
// @Param request body service.SubmitRequest true "答案"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response "答案格式错误"
// @Failure 402 {object} util.Response "超出每日免费题量"
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "会话已结束或题目不匹配"
// @Failure 429 {object} util.Response "提交过于频繁"
// @Router /api/practice/sessions/{id}/submit [post]
func (c *PracticeController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.PracticeService.Submit(ctx.Request.Context(), user.UserID, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Heartbeat godoc
// @Summary 心跳
// @Description 累计有效练习时长
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/practice/sessions/{id}/heartbeat [post]
func (c *PracticeController) Heartbeat(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.PracticeService.Heartbeat(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Finish godoc
// @Summary 结束练习
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param Idempotency-Key header string false "幂等键"
// @Success 200 {object} util.Response{data=map[string]bool}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/practice/sessions/{id}/finish [post]
func (c *PracticeController) Finish(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.PracticeService.Finish(ctx.Request.Context(), user.UserID, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"ok": true})
}

// Attempts godoc
// @Summary 作答回顾
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=[]service.AttemptView}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/practice/sessions/{id}/attempts [get]
func (c *PracticeController) Attempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.PracticeService.Attempts(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// Progress godoc
// @Summary 技能进度
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param skillId path int true "技能ID"
// @Success 200 {object} util.Response{data=model.ProgressSnapshot}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "技能不存在"
// @Router /api/practice/skills/{skillId}/progress [get]
func (c *PracticeController) Progress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	skillID, err := strconv.ParseUint(ctx.Param("skillId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid skill id")
		return
	}

	progress, err := c.PracticeService.Progress(ctx.Request.Context(), user.UserID, uint(skillID))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
