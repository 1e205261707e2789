package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"priceoye_shop_v1/internal/api/dto"
	"priceoye_shop_v1/internal/config"
	"priceoye_shop_v1/internal/middleware"
	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/repository"
)

// ==================== 测试辅助 ====================

type fakeGoogle struct {
	info *GoogleUserInfo
	err  error
}

func (f *fakeGoogle) VerifyIDToken(_ context.Context, _ string) (*GoogleUserInfo, error) {
	return f.info, f.err
}

type authFixture struct {
	db     *gorm.DB
	svc    *AuthService
	mailer *MemoryMailer
	google *fakeGoogle
	users  repository.UserRepository
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()
	db := setupTestDB(t)
	f := &authFixture{
		db:     db,
		mailer: &MemoryMailer{},
		google: &fakeGoogle{},
		users:  repository.NewUserRepository(db),
	}
	f.svc = NewAuthService(
		f.users,
		repository.NewAuthTokenRepository(db),
		NewActionTokenService("test-secret", 72*time.Hour),
		f.mailer,
		f.google,
		middleware.NewActionLimiter(),
		AuthOptions{
			ActivationURL:       "http://shop.test/activate/{uid}/{token}",
			PasswordResetURL:    "http://shop.test/password/reset/confirm/{uid}/{token}",
			SendActivationEmail: true,
			ResendInterval:      time.Minute,
			TokenTTL:            72 * time.Hour,
		},
	)
	return f
}

var linkPattern = regexp.MustCompile(`/(activate|confirm)/([^/]+)/([^/\s"]+)`)

// lastLink 从最后一封邮件里取出 uid 和 token
func (f *authFixture) lastLink(t *testing.T) (uid, token string) {
	t.Helper()
	msg, ok := f.mailer.Last()
	require.True(t, ok, "没有发出邮件")
	m := linkPattern.FindStringSubmatch(msg.Text)
	require.Len(t, m, 4, msg.Text)
	return m[2], m[3]
}

func (f *authFixture) register(t *testing.T, username string) dto.UserResponse {
	t.Helper()
	u, err := f.svc.Register(context.Background(), &dto.UserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	return u
}

// ==================== 注册 / 激活 ====================

func TestAuthService_RegisterAndActivate(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()

	u := f.register(t, "ali")

	stored, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive, "注册后未激活")

	msg, _ := f.mailer.Last()
	assert.Equal(t, []string{"ali@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "http://shop.test/activate/")

	_, err = f.svc.Login(ctx, &dto.TokenCreateRequest{Email: "ali@example.com", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "未激活不能登录")

	uid, token := f.lastLink(t)
	assert.Equal(t, EncodeUID(u.ID), uid)

	_, err = f.svc.Activate(ctx, uid, "bad-token")
	requireFieldError(t, err, "token")

	_, err = f.svc.Activate(ctx, "%%%", token)
	requireFieldError(t, err, "uid")

	_, err = f.svc.Activate(ctx, EncodeUID(999), token)
	requireFieldError(t, err, "uid")

	user, err := f.svc.Activate(ctx, uid, token)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	_, err = f.svc.Activate(ctx, uid, token)
	assert.ErrorIs(t, err, ErrStaleToken)

	pair, err := f.svc.Login(ctx, &dto.TokenCreateRequest{Email: "ali@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	f := setupAuth(t)
	f.register(t, "ali")

	_, err := f.svc.Register(context.Background(), &dto.UserRequest{
		Username: "ali2", Email: "ali@example.com", Password: "x",
	})
	requireFieldError(t, err, "email")
	assert.Len(t, f.mailer.Sent, 1)
}

func TestAuthService_ResendActivation(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	f.register(t, "ali")

	require.NoError(t, f.svc.ResendActivation(ctx, "ali@example.com"))
	assert.Len(t, f.mailer.Sent, 2)

	err := f.svc.ResendActivation(ctx, "ALI@example.com")
	assert.ErrorIs(t, err, ErrTooManyRequests, "同一邮箱限流")

	require.NoError(t, f.svc.ResendActivation(ctx, "nobody@example.com"), "邮箱不存在静默成功")
	assert.Len(t, f.mailer.Sent, 2)
}

// ==================== 密码 ====================

func TestAuthService_SetPassword(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	u := createUser(t, f.db, "ali")

	err := f.svc.SetPassword(ctx, u.ID, &dto.SetPasswordRequest{CurrentPassword: "wrong", NewPassword: "new-pass"})
	requireFieldError(t, err, "current_password")

	require.NoError(t, f.svc.SetPassword(ctx, u.ID, &dto.SetPasswordRequest{CurrentPassword: "secret-pass", NewPassword: "new-pass"}))

	_, err = f.svc.Authenticate(ctx, "ali@example.com", "new-pass")
	assert.NoError(t, err)

	err = f.svc.SetPassword(ctx, u.ID, &dto.SetPasswordRequest{CurrentPassword: "new-pass", NewPassword: strings.Repeat("é", 40)})
	requireFieldError(t, err, "new_password")

	assert.ErrorIs(t, f.svc.SetPassword(ctx, 999, &dto.SetPasswordRequest{}), ErrNotFound)
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	createUser(t, f.db, "ali")

	require.NoError(t, f.svc.ResetPassword(ctx, "nobody@example.com"))
	assert.Empty(t, f.mailer.Sent, "邮箱不存在不发邮件")

	require.NoError(t, f.svc.ResetPassword(ctx, "ali@example.com"))
	uid, token := f.lastLink(t)

	err := f.svc.ResetPasswordConfirm(ctx, &dto.ResetPasswordConfirmRequest{UID: uid, Token: "nope", NewPassword: "x"})
	requireFieldError(t, err, "token")

	require.NoError(t, f.svc.ResetPasswordConfirm(ctx, &dto.ResetPasswordConfirmRequest{UID: uid, Token: token, NewPassword: "brand-new"}))

	err = f.svc.ResetPasswordConfirm(ctx, &dto.ResetPasswordConfirmRequest{UID: uid, Token: token, NewPassword: "again"})
	requireFieldError(t, err, "token")

	_, err = f.svc.Authenticate(ctx, "ali@example.com", "brand-new")
	assert.NoError(t, err)
}

// ==================== JWT ====================

func TestAuthService_RefreshAndVerify(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	createUser(t, f.db, "ali")

	pair, err := f.svc.Login(ctx, &dto.TokenCreateRequest{Email: "ali@example.com", Password: "secret-pass"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, &dto.TokenRefreshRequest{Refresh: pair.Access})
	assert.ErrorIs(t, err, ErrInvalidToken, "Access Token 不能用于刷新")

	res, err := f.svc.Refresh(ctx, &dto.TokenRefreshRequest{Refresh: pair.Refresh})
	require.NoError(t, err)
	claims, err := middleware.ParseToken(res.Access)
	require.NoError(t, err)
	assert.Equal(t, middleware.TokenTypeAccess, claims.Subject)

	assert.NoError(t, f.svc.Verify(pair.Access))
	assert.ErrorIs(t, f.svc.Verify("x.y.z"), ErrInvalidToken)

	_, err = f.svc.Login(ctx, &dto.TokenCreateRequest{Email: "ali@example.com", Password: "bad"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// ==================== 不透明令牌 ====================

func TestAuthService_TokenLoginLogout(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	u := createUser(t, f.db, "ali")
	login := &dto.TokenCreateRequest{Email: "ali@example.com", Password: "secret-pass"}

	_, err := f.svc.TokenLogin(ctx, &dto.TokenCreateRequest{Email: "ali@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	first, err := f.svc.TokenLogin(ctx, login)
	require.NoError(t, err)
	assert.Len(t, first.AuthToken, 40)

	again, err := f.svc.TokenLogin(ctx, login)
	require.NoError(t, err)
	assert.Equal(t, first.AuthToken, again.AuthToken, "重复登录返回同一个令牌")

	userID, email, err := f.svc.ResolveToken(ctx, first.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, "ali@example.com", email)

	_, _, err = f.svc.ResolveToken(ctx, "unknown")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, f.svc.TokenLogout(ctx, u.ID))
	_, _, err = f.svc.ResolveToken(ctx, first.AuthToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "注销后令牌失效")

	next, err := f.svc.TokenLogin(ctx, login)
	require.NoError(t, err)
	assert.NotEqual(t, first.AuthToken, next.AuthToken, "注销后重新登录生成新令牌")
}

func TestAuthService_ResolveTokenInactiveUser(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	u := createUser(t, f.db, "ali")

	token, err := f.svc.TokenLogin(ctx, &dto.TokenCreateRequest{Email: "ali@example.com", Password: "secret-pass"})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)
	_, _, err = f.svc.ResolveToken(ctx, token.AuthToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// ==================== 社交登录 ====================

func TestAuthService_GoogleLogin(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	createUser(t, f.db, "ali")

	f.google.info = &GoogleUserInfo{Email: "ali@gmail.com", EmailVerified: "true", GivenName: "Ali", FamilyName: "Khan"}
	pair, err := f.svc.GoogleLogin(ctx, &dto.GoogleLoginRequest{IDToken: "id-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)

	created, err := f.users.GetByEmail(ctx, "ali@gmail.com")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, "ali", created.Username, "用户名被占用时追加后缀")
	assert.Contains(t, created.Username, "ali-")
	assert.True(t, created.IsActive)
	assert.Equal(t, "Ali", created.FirstName)

	// 再次登录复用同一个账号
	_, err = f.svc.GoogleLogin(ctx, &dto.GoogleLoginRequest{IDToken: "id-token"})
	require.NoError(t, err)
	count, err := f.users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	f.google.info = &GoogleUserInfo{Email: "x@gmail.com", EmailVerified: "false"}
	_, err = f.svc.GoogleLogin(ctx, &dto.GoogleLoginRequest{IDToken: "id-token"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGoogleVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("id_token") {
		case "good":
			_, _ = w.Write([]byte(`{"aud":"client-1","email":"ali@gmail.com","email_verified":"true","given_name":"Ali"}`))
		case "other-app":
			_, _ = w.Write([]byte(`{"aud":"client-2","email":"ali@gmail.com","email_verified":"true"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
		}
	}))
	defer srv.Close()

	v := NewGoogleVerifier(config.GoogleConfig{ClientID: "client-1", TokenInfoURL: srv.URL})
	ctx := context.Background()

	info, err := v.VerifyIDToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "ali@gmail.com", info.Email)
	assert.True(t, info.Verified())

	_, err = v.VerifyIDToken(ctx, "other-app")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.VerifyIDToken(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGoogleVerifier_RequiresClientID(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aud":"someone-elses-app","email":"ali@gmail.com","email_verified":"true"}`))
	}))
	defer srv.Close()

	v := NewGoogleVerifier(config.GoogleConfig{TokenInfoURL: srv.URL})
	_, err := v.VerifyIDToken(context.Background(), "any")
	assert.ErrorIs(t, err, ErrInvalidToken, "未配置 client_id 时拒绝")
	assert.Zero(t, hits, "不应请求 tokeninfo")

	v = NewGoogleVerifier(config.GoogleConfig{ClientID: "client-1", TokenInfoURL: srv.URL})
	_, err = v.VerifyIDToken(context.Background(), "any")
	assert.ErrorIs(t, err, ErrInvalidToken, "aud 不一致")
	assert.Equal(t, 1, hits)
}

func TestAuthService_GoogleLogin_UnicodeUsername(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()

	f.google.info = &GoogleUserInfo{Email: "jürgen!müller@gmail.com", EmailVerified: "true"}
	_, err := f.svc.GoogleLogin(ctx, &dto.GoogleLoginRequest{IDToken: "id-token"})
	require.NoError(t, err)

	created, err := f.users.GetByEmail(ctx, "jürgen!müller@gmail.com")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "jürgen_müller", created.Username, "保留非 ASCII 字母，只替换非法字符")
}
