package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey       string        // 签名密钥
	AccessTokenTTL  time.Duration // Access Token 有效期
	RefreshTokenTTL time.Duration // Refresh Token 有效期
	Issuer          string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:       "priceoye-secret-key-change-in-production",
		AccessTokenTTL:  2 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "priceoye",
	}
}

// 全局配置
var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// GetJWTConfig 获取 JWT 配置
func GetJWTConfig() *JWTConfig {
	return jwtConfig
}

// Token 类型，写在 Subject 里
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ==================== Claims 定义 ====================

// UserClaims 用户声明
type UserClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ==================== Token 生成 ====================

func generateToken(userID int64, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			Subject:   tokenType,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// GenerateAccessToken 生成 Access Token
func GenerateAccessToken(userID int64, email string) (string, error) {
	return generateToken(userID, email, TokenTypeAccess, jwtConfig.AccessTokenTTL)
}

// GenerateRefreshToken 生成 Refresh Token
func GenerateRefreshToken(userID int64, email string) (string, error) {
	return generateToken(userID, email, TokenTypeRefresh, jwtConfig.RefreshTokenTTL)
}

// GenerateTokenPair 生成 Token 对
func GenerateTokenPair(userID int64, email string) (accessToken, refreshToken string, err error) {
	accessToken, err = GenerateAccessToken(userID, email)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = GenerateRefreshToken(userID, email)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ==================== Token 解析 ====================

// ParseToken 解析 Token
func ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(jwtConfig.SecretKey), nil
	}, jwt.WithIssuer(jwtConfig.Issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
)

// bearerClaims 从 Authorization 头解析 Access Token
func bearerClaims(c *gin.Context) (*UserClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "未提供认证信息"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "认证格式错误，应为 Bearer {token}"
	}

	claims, err := ParseToken(parts[1])
	if err != nil {
		return nil, "Token 无效或已过期"
	}
	if claims.Subject != TokenTypeAccess {
		return nil, "Token 类型错误"
	}
	return claims, ""
}

func setClaims(c *gin.Context, claims *UserClaims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyEmail, claims.Email)
}

// ==================== 辅助函数 ====================

// GetUserID 从 Context 获取用户 ID
func GetUserID(c *gin.Context) int64 {
	if id, exists := c.Get(ContextKeyUserID); exists {
		return id.(int64)
	}
	return 0
}

// GetUserEmail 从 Context 获取用户邮箱
func GetUserEmail(c *gin.Context) string {
	if email, exists := c.Get(ContextKeyEmail); exists {
		return email.(string)
	}
	return ""
}
