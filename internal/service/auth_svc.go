package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"priceoye_shop_v1/internal/api/dto"
	"priceoye_shop_v1/internal/middleware"
	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/repository"
)

// 限流动作
const (
	actionResendActivation = "resend_activation"
	actionResetPassword    = "reset_password"
)

// AuthOptions 账号流程配置
type AuthOptions struct {
	ActivationURL       string // 含 {uid} {token} 占位符
	PasswordResetURL    string // 含 {uid} {token} 占位符
	SendActivationEmail bool
	ResendInterval      time.Duration
	TokenTTL            time.Duration
}

// ==================== AuthService 账号服务 ====================

// AuthService 注册、激活、密码、JWT、社交登录
type AuthService struct {
	users   repository.UserRepository
	keys    repository.AuthTokenRepository
	schema  userSchema
	tokens  *ActionTokenService
	mailer  Mailer
	google  GoogleVerifier
	limiter *middleware.ActionLimiter
	opts    AuthOptions
	now     func() time.Time
}

// NewAuthService 创建账号服务
func NewAuthService(
	users repository.UserRepository,
	keys repository.AuthTokenRepository,
	tokens *ActionTokenService,
	mailer Mailer,
	google GoogleVerifier,
	limiter *middleware.ActionLimiter,
	opts AuthOptions,
) *AuthService {
	return &AuthService{
		users:   users,
		keys:    keys,
		schema:  userSchema{users: users},
		tokens:  tokens,
		mailer:  mailer,
		google:  google,
		limiter: limiter,
		opts:    opts,
		now:     time.Now,
	}
}

// ==================== 注册 / 激活 ====================

// Register 注册新用户
// 开启邮件激活时账号先处于未激活状态，并发送激活链接
func (s *AuthService) Register(ctx context.Context, req *dto.UserRequest) (dto.UserResponse, error) {
	if err := s.schema.Validate(ctx, 0, req); err != nil {
		return dto.UserResponse{}, err
	}

	user := &model.User{}
	if err := s.schema.Apply(req, user); err != nil {
		return dto.UserResponse{}, err
	}
	user.IsActive = !s.opts.SendActivationEmail

	if err := s.users.Create(ctx, user); err != nil {
		return dto.UserResponse{}, translateWriteError(err)
	}

	if s.opts.SendActivationEmail {
		// 发送失败不回滚注册，用户可以重发激活邮件
		if err := s.sendLink(ctx, user, PurposeActivation); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", user.ID).Msg("激活邮件发送失败")
		}
	}
	return toUserResponse(user), nil
}

// Activate 校验 uid + token 并激活账号
// 账号已激活时返回用户和 ErrStaleToken
func (s *AuthService) Activate(ctx context.Context, uid, token string) (*model.User, error) {
	user, err := s.userFromUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !s.tokens.Check(user, PurposeActivation, token) {
		return nil, FieldErrors{"token": "无效的令牌。"}
	}
	if user.IsActive {
		return user, ErrStaleToken
	}

	if err := s.users.Activate(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("激活账号失败: %w", err)
	}
	user.IsActive = true
	return user, nil
}

// ResendActivation 重发激活邮件，邮箱不存在或已激活时静默成功
func (s *AuthService) ResendActivation(ctx context.Context, email string) error {
	if err := s.throttle(actionResendActivation, email); err != nil {
		return err
	}
	if !s.opts.SendActivationEmail {
		return nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.IsActive {
		return nil
	}
	return s.sendLink(ctx, user, PurposeActivation)
}

// ==================== 当前用户 / 密码 ====================

// Me 当前登录用户
func (s *AuthService) Me(ctx context.Context, userID int64) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if user == nil {
		return dto.UserResponse{}, ErrNotFound
	}
	return toUserResponse(user), nil
}

// SetPassword 校验当前密码后修改
func (s *AuthService) SetPassword(ctx context.Context, userID int64, req *dto.SetPasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if !checkPassword(user.Password, req.CurrentPassword) {
		return FieldErrors{"current_password": "密码错误。"}
	}
	return s.updatePassword(ctx, user.ID, req.NewPassword)
}

// ResetPassword 发送重置密码链接，邮箱不存在时也返回成功
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	if err := s.throttle(actionResetPassword, email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return nil
	}
	return s.sendLink(ctx, user, PurposePasswordReset)
}

// ResetPasswordConfirm 通过邮件里的 uid + token 设置新密码
func (s *AuthService) ResetPasswordConfirm(ctx context.Context, req *dto.ResetPasswordConfirmRequest) error {
	user, err := s.userFromUID(ctx, req.UID)
	if err != nil {
		return err
	}
	if !s.tokens.Check(user, PurposePasswordReset, req.Token) {
		return FieldErrors{"token": "无效的令牌。"}
	}
	return s.updatePassword(ctx, user.ID, req.NewPassword)
}

func (s *AuthService) updatePassword(ctx context.Context, userID int64, raw string) error {
	hashed, err := hashPassword("new_password", raw)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("更新密码失败: %w", err)
	}
	return nil
}

// ==================== 登录 / JWT ====================

// Authenticate 邮箱密码校验，成功后更新最后登录时间
// 未激活账号与密码错误返回同一个错误
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || !checkPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	s.touchLastLogin(ctx, user)
	return user, nil
}

// Login 邮箱密码换取 Token 对
func (s *AuthService) Login(ctx context.Context, req *dto.TokenCreateRequest) (*dto.TokenPairResponse, error) {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return issuePair(user)
}

// Refresh 用 Refresh Token 换新的 Access Token
func (s *AuthService) Refresh(ctx context.Context, req *dto.TokenRefreshRequest) (*dto.TokenRefreshResponse, error) {
	claims, err := middleware.ParseToken(req.Refresh)
	if err != nil || claims.Subject != middleware.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	// 确保用户仍然有效
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	access, err := middleware.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.TokenRefreshResponse{Access: access}, nil
}

// Verify 校验 Token 签名和有效期
func (s *AuthService) Verify(token string) error {
	if _, err := middleware.ParseToken(token); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// ==================== 不透明令牌 ====================

// TokenLogin 邮箱密码换取不透明令牌，已有令牌时直接返回
func (s *AuthService) TokenLogin(ctx context.Context, req *dto.TokenCreateRequest) (*dto.AuthTokenResponse, error) {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	key, err := newTokenKey()
	if err != nil {
		return nil, err
	}
	token, err := s.keys.GetOrCreate(ctx, user.ID, key)
	if err != nil {
		return nil, fmt.Errorf("保存登录令牌失败: %w", err)
	}
	return &dto.AuthTokenResponse{AuthToken: token.Key}, nil
}

// TokenLogout 删除用户的不透明令牌
func (s *AuthService) TokenLogout(ctx context.Context, userID int64) error {
	if err := s.keys.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("删除登录令牌失败: %w", err)
	}
	return nil
}

// ResolveToken 令牌不存在或用户已停用时返回 ErrInvalidToken
func (s *AuthService) ResolveToken(ctx context.Context, key string) (int64, string, error) {
	token, err := s.keys.GetByKey(ctx, key)
	if err != nil {
		return 0, "", err
	}
	if token == nil {
		return 0, "", ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return 0, "", err
	}
	if user == nil || !user.IsActive {
		return 0, "", ErrInvalidToken
	}
	return user.ID, user.Email, nil
}

// newTokenKey 20 字节随机数的十六进制
func newTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成登录令牌失败: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ==================== 社交登录 ====================

var usernameInvalidChars = regexp.MustCompile(`[^\p{L}\p{N}_.@+-]`)

// GoogleLogin 校验 Google ID Token，按邮箱查找或创建用户
func (s *AuthService) GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.TokenPairResponse, error) {
	info, err := s.google.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if !info.Verified() {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}

	switch {
	case user == nil:
		user, err = s.createSocialUser(ctx, info)
		if err != nil {
			return nil, err
		}
	case !user.IsActive:
		// 邮箱已由 Google 验证，视同激活
		if err := s.users.Activate(ctx, user.ID); err != nil {
			return nil, err
		}
		user.IsActive = true
	}

	s.touchLastLogin(ctx, user)
	return issuePair(user)
}

func (s *AuthService) createSocialUser(ctx context.Context, info *GoogleUserInfo) (*model.User, error) {
	username, err := s.availableUsername(ctx, info.Email)
	if err != nil {
		return nil, err
	}

	// 社交账号没有可用密码，只能通过重置密码设置
	hashed, err := hashPassword("password", uuid.New().String())
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:  username,
		Email:     info.Email,
		FirstName: truncate(info.GivenName, 150),
		LastName:  truncate(info.FamilyName, 150),
		Password:  hashed,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, translateWriteError(err)
	}
	return user, nil
}

// availableUsername 取邮箱前缀作为用户名，被占用时追加随机后缀
func (s *AuthService) availableUsername(ctx context.Context, email string) (string, error) {
	base := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		base = email[:i]
	}
	base = truncate(usernameInvalidChars.ReplaceAllString(base, "_"), 140)

	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := s.users.ExistsBy(ctx, "username", candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + uuid.New().String()[:8]
	}
	return "", errors.New("无法生成可用的用户名")
}

// ==================== 辅助函数 ====================

func (s *AuthService) userFromUID(ctx context.Context, uid string) (*model.User, error) {
	id, err := DecodeUID(uid)
	if err != nil {
		return nil, FieldErrors{"uid": "无效的用户 ID。"}
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, FieldErrors{"uid": "无效的用户 ID。"}
	}
	return user, nil
}

func (s *AuthService) throttle(action, email string) error {
	res := s.limiter.Check(middleware.ActionKey(action, strings.ToLower(email)), s.opts.ResendInterval)
	if !res.Allowed {
		return fmt.Errorf("%w: %s", ErrTooManyRequests, middleware.RetryMessage(res.RetryAfter))
	}
	return nil
}

// touchLastLogin 更新失败只记日志，不影响登录
func (s *AuthService) touchLastLogin(ctx context.Context, user *model.User) {
	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", user.ID).Msg("更新最后登录时间失败")
		return
	}
	user.LastLogin = &now
}

func (s *AuthService) sendLink(ctx context.Context, user *model.User, purpose string) error {
	token, err := s.tokens.Make(user, purpose)
	if err != nil {
		return fmt.Errorf("生成 token 失败: %w", err)
	}

	tmpl, subject, url := activationMailTmpl, "激活你的 PriceOye 账号", s.opts.ActivationURL
	if purpose == PurposePasswordReset {
		tmpl, subject, url = resetMailTmpl, "重置你的 PriceOye 密码", s.opts.PasswordResetURL
	}

	link := strings.NewReplacer("{uid}", EncodeUID(user.ID), "{token}", token).Replace(url)
	html, err := renderMail(tmpl, linkMailData{
		Username:  user.Username,
		Link:      link,
		ValidDays: int(s.opts.TokenTTL.Hours() / 24),
	})
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, MailMessage{
		To:      []string{user.Email},
		Subject: subject,
		Text:    subject + ": " + link,
		HTML:    html,
	})
}

func issuePair(user *model.User) (*dto.TokenPairResponse, error) {
	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairResponse{Access: access, Refresh: refresh}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
