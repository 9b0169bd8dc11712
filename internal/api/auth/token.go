package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken 是令牌校验唯一的错误种类。
//
// 签名不过、格式错误、缺 subject、已过期，调用方一律拿到它，
// 故意不区分"过期"和"伪造"。
var ErrInvalidToken = errors.New("invalid token")

// Service 负责签发和校验带时效的 Bearer 令牌。
//
// 密钥和算法在进程启动时注入一次，请求处理期间不读任何全局状态。
type Service struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewService 创建令牌服务。secret 或 algorithm 为空是致命的配置错误。
func NewService(secret, algorithm string, ttl time.Duration) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}
	if strings.TrimSpace(algorithm) == "" {
		return nil, fmt.Errorf("jwt algorithm is not configured")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown jwt algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

// TTL 返回默认令牌有效期。
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue 为 subject 签发一个有效期为 ttl 的令牌。
// ttl 按字面使用：传 0 会签出一个到手即过期的令牌。
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate 校验令牌并返回其 subject。任何问题都返回 ErrInvalidToken。
func (s *Service) Validate(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
