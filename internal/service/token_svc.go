package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"priceoye_shop_v1/internal/model"
)

// 一次性链接的用途
const (
	PurposeActivation    = "activation"
	PurposePasswordReset = "password_reset"
)

// ActionClaims 激活 / 重置密码链接里的 token
type ActionClaims struct {
	UserID      int64  `json:"uid"`
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// ActionTokenService 签发和校验一次性链接 token
// 指纹包含密码哈希、最后登录时间和邮箱，任何一项变化旧 token 即失效
type ActionTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewActionTokenService 创建 token 服务
func NewActionTokenService(secret string, ttl time.Duration) *ActionTokenService {
	return &ActionTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Make 为用户签发指定用途的 token
func (s *ActionTokenService) Make(user *model.User, purpose string) (string, error) {
	now := s.now()
	claims := &ActionClaims{
		UserID:      user.ID,
		Purpose:     purpose,
		Fingerprint: fingerprint(user),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   purpose,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Check token 是否由该用户、该用途签发且仍然有效
func (s *ActionTokenService) Check(user *model.User, purpose, token string) bool {
	claims := &ActionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return false
	}

	return claims.UserID == user.ID &&
		claims.Purpose == purpose &&
		claims.Fingerprint == fingerprint(user)
}

func fingerprint(user *model.User) string {
	var lastLogin string
	if user.LastLogin != nil {
		lastLogin = strconv.FormatInt(user.LastLogin.UTC().Unix(), 10)
	}
	sum := sha256.Sum256([]byte(user.Password + "|" + lastLogin + "|" + user.Email))
	return hex.EncodeToString(sum[:8])
}

// ==================== uid 编码 ====================

// EncodeUID 用户 ID 转成链接里的 uid
func EncodeUID(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// DecodeUID 解析 uid，兼容带 = 补位的写法
func DecodeUID(uid string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uid, "="))
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("invalid uid")
	}
	return id, nil
}
