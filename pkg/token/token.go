package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
)

// Claims 访问令牌中携带的声明
// 签名由后端校验，客户端只读取内容和有效期
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Inspect 解析令牌内容（不校验签名）
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// Expired 令牌是否已过期
// 无法解析按已过期处理；没有过期声明时按未过期处理，交给后端的401兜底
func Expired(tokenString string) bool {
	claims, err := Inspect(tokenString)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

// RemainingTTL 令牌剩余有效时长
func RemainingTTL(tokenString string) time.Duration {
	claims, err := Inspect(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return 0
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 0 {
		return 0
	}
	return ttl
}
