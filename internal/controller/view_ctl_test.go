package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/service"
)

// stubAuthenticator 固定返回结果的账号服务
type stubAuthenticator struct {
	activateErr error
	user        *model.User
}

func (s *stubAuthenticator) Activate(_ context.Context, uid, token string) (*model.User, error) {
	if s.activateErr != nil {
		return nil, s.activateErr
	}
	return s.user, nil
}

func (s *stubAuthenticator) Authenticate(_ context.Context, email, password string) (*model.User, error) {
	if email == s.user.Email && password == "secret" {
		return s.user, nil
	}
	return nil, service.ErrInvalidCredentials
}

func setupViewRouter(auth AccountAuthenticator) *gin.Engine {
	v := NewViewController(auth, NewSessionStore("test-session-secret"), "test_session", "/api-auth/login")
	r := gin.New()
	r.GET("/activate/:uid/:token", v.Activate)
	r.GET("/api-auth/login", v.LoginPage)
	r.POST("/api-auth/login", v.Login)
	r.GET("/api-auth/logout", v.Logout)
	return r
}

// follow 带上一个响应设置的 cookie 访问 path
func follow(r http.Handler, prev *httptest.ResponseRecorder, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range prev.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestViewController_ActivateSuccess(t *testing.T) {
	r := setupViewRouter(&stubAuthenticator{user: &model.User{Username: "ali"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activate/NQ/token", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api-auth/login", w.Header().Get("Location"))

	page := follow(r, w, "/api-auth/login")
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "账号已激活")

	// flash 只展示一次
	again := follow(r, page, "/api-auth/login")
	assert.NotContains(t, again.Body.String(), "账号已激活")
}

func TestViewController_ActivateStaleRedirects(t *testing.T) {
	r := setupViewRouter(&stubAuthenticator{activateErr: service.ErrStaleToken})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activate/NQ/token", nil))
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestViewController_ActivateFailure(t *testing.T) {
	r := setupViewRouter(&stubAuthenticator{activateErr: service.FieldErrors{"uid": "无效的用户 ID。"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activate/%25%25/token", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "激活失败")
}

func TestViewController_LoginLogout(t *testing.T) {
	r := setupViewRouter(&stubAuthenticator{user: &model.User{BaseModel: model.BaseModel{ID: 3}, Username: "ali", Email: "ali@example.com"}})

	post := func(email, password string) *httptest.ResponseRecorder {
		form := url.Values{"email": {email}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/api-auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("ali@example.com", "wrong")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, follow(r, w, "/api-auth/login").Body.String(), "邮箱或密码错误")

	w = post("ali@example.com", "secret")
	require.Equal(t, http.StatusSeeOther, w.Code)
	page := follow(r, w, "/api-auth/login")
	assert.Contains(t, page.Body.String(), "欢迎回来，ali")
	assert.Contains(t, page.Body.String(), "退出登录")

	out := follow(r, page, "/api-auth/logout")
	assert.Equal(t, http.StatusSeeOther, out.Code)
	page = follow(r, out, "/api-auth/login")
	assert.Contains(t, page.Body.String(), "已退出登录")
	assert.Contains(t, page.Body.String(), `name="password"`)
}
