package controller

import (
	"bytes"
	"context"
	"embed"
	"encoding/gob"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// session 中保存的登录用户
const sessionKeyUserID = "user_id"

// FlashMessage 一次性提示消息
type FlashMessage struct {
	Type    string
	Message string
}

func init() {
	gob.Register(FlashMessage{})
}

// AccountAuthenticator 页面视图依赖的账号能力
type AccountAuthenticator interface {
	Activate(ctx context.Context, uid, token string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
}

// ==================== ViewController 页面控制器 ====================

// ViewController 激活链接落地页和浏览器登录页
type ViewController struct {
	auth          AccountAuthenticator
	store         sessions.Store
	sessionName   string
	loginRedirect string
}

// NewViewController 创建页面控制器
func NewViewController(auth AccountAuthenticator, store sessions.Store, sessionName, loginRedirect string) *ViewController {
	return &ViewController{
		auth:          auth,
		store:         store,
		sessionName:   sessionName,
		loginRedirect: loginRedirect,
	}
}

// NewSessionStore Cookie 会话存储
func NewSessionStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Activate 邮件里的激活链接
// 成功（或账号已激活）时带提示跳转登录页，否则展示失败页
func (v *ViewController) Activate(ctx *gin.Context) {
	_, err := v.auth.Activate(ctx.Request.Context(), ctx.Param("uid"), ctx.Param("token"))
	if err != nil && !errors.Is(err, service.ErrStaleToken) {
		var fieldErrs service.FieldErrors
		status := http.StatusBadRequest
		if !errors.As(err, &fieldErrs) {
			zerolog.Ctx(ctx.Request.Context()).Error().Err(err).Msg("激活账号失败")
			status = http.StatusInternalServerError
		}
		v.render(ctx, status, "activation_failed.html", nil)
		return
	}

	v.flash(ctx, FlashMessage{Type: "success", Message: "账号已激活，现在可以登录了。"})
	ctx.Redirect(http.StatusFound, v.loginRedirect)
}

// LoginPage 登录页
func (v *ViewController) LoginPage(ctx *gin.Context) {
	session, _ := v.store.Get(ctx.Request, v.sessionName)
	data := gin.H{
		"Flashes": getFlashes(session),
		"UserID":  session.Values[sessionKeyUserID],
	}
	// 读取 flash 后需要保存，清掉已展示的消息
	if err := session.Save(ctx.Request, ctx.Writer); err != nil {
		zerolog.Ctx(ctx.Request.Context()).Warn().Err(err).Msg("保存会话失败")
	}
	v.render(ctx, http.StatusOK, "login.html", data)
}

// Login 登录表单提交
func (v *ViewController) Login(ctx *gin.Context) {
	session, _ := v.store.Get(ctx.Request, v.sessionName)

	user, err := v.auth.Authenticate(ctx.Request.Context(), ctx.PostForm("email"), ctx.PostForm("password"))
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		session.AddFlash(FlashMessage{Type: "error", Message: "邮箱或密码错误。"})
	case err != nil:
		zerolog.Ctx(ctx.Request.Context()).Error().Err(err).Msg("登录失败")
		session.AddFlash(FlashMessage{Type: "error", Message: "服务器内部错误，请稍后再试。"})
	default:
		session.Values[sessionKeyUserID] = user.ID
		session.AddFlash(FlashMessage{Type: "success", Message: "欢迎回来，" + user.Username + "！"})
	}

	if err := session.Save(ctx.Request, ctx.Writer); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, v.loginRedirect)
}

// Logout 退出登录
func (v *ViewController) Logout(ctx *gin.Context) {
	session, _ := v.store.Get(ctx.Request, v.sessionName)
	delete(session.Values, sessionKeyUserID)
	session.AddFlash(FlashMessage{Type: "success", Message: "已退出登录。"})
	if err := session.Save(ctx.Request, ctx.Writer); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, v.loginRedirect)
}

// ==================== 辅助函数 ====================

func (v *ViewController) flash(ctx *gin.Context, msg FlashMessage) {
	session, _ := v.store.Get(ctx.Request, v.sessionName)
	session.AddFlash(msg)
	if err := session.Save(ctx.Request, ctx.Writer); err != nil {
		zerolog.Ctx(ctx.Request.Context()).Warn().Err(err).Msg("保存会话失败")
	}
}

func getFlashes(session *sessions.Session) []FlashMessage {
	var messages []FlashMessage
	for _, f := range session.Flashes() {
		if fm, ok := f.(FlashMessage); ok {
			messages = append(messages, fm)
		}
	}
	return messages
}

func (v *ViewController) render(ctx *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
