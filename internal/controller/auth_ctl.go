package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"priceoye_shop_v1/internal/api/dto"
	"priceoye_shop_v1/internal/middleware"
	"priceoye_shop_v1/internal/service"
)

// ==================== AuthController 账号控制器 ====================

// AuthController 注册、激活、密码、JWT、社交登录
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController 创建账号控制器
func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// ==================== 注册 / 激活 ====================

// Register 注册
// @Summary 注册新用户
// @Description 开启邮件激活时账号未激活，激活链接发送到邮箱
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.UserRequest true "用户信息"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/users [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.UserRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, user)
}

// Activation 激活账号
// @Summary 激活账号
// @Tags Auth
// @Accept json
// @Param request body dto.ActivationRequest true "uid 与 token"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /auth/users/activation [post]
func (c *AuthController) Activation(ctx *gin.Context) {
	var req dto.ActivationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if _, err := c.authService.Activate(ctx.Request.Context(), req.UID, req.Token); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ResendActivation 重发激活邮件
// @Summary 重发激活邮件
// @Tags Auth
// @Accept json
// @Param request body dto.EmailRequest true "邮箱"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/users/resend_activation [post]
func (c *AuthController) ResendActivation(ctx *gin.Context) {
	var req dto.EmailRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResendActivation(ctx.Request.Context(), req.Email); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ==================== 当前用户 / 密码 ====================

// Me 当前用户
// @Summary 当前登录用户
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/users/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user, err := c.authService.Me(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// SetPassword 修改密码
// @Summary 修改密码
// @Tags Auth
// @Accept json
// @Security BearerAuth
// @Param request body dto.SetPasswordRequest true "当前密码与新密码"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/users/set_password [post]
func (c *AuthController) SetPassword(ctx *gin.Context) {
	var req dto.SetPasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.SetPassword(ctx.Request.Context(), middleware.GetUserID(ctx), &req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ResetPassword 申请重置密码
// @Summary 发送重置密码邮件
// @Description 邮箱不存在时同样返回 204
// @Tags Auth
// @Accept json
// @Param request body dto.EmailRequest true "邮箱"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/users/reset_password [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.EmailRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), req.Email); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ResetPasswordConfirm 确认重置密码
// @Summary 通过邮件链接设置新密码
// @Tags Auth
// @Accept json
// @Param request body dto.ResetPasswordConfirmRequest true "uid、token 与新密码"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/users/reset_password_confirm [post]
func (c *AuthController) ResetPasswordConfirm(ctx *gin.Context) {
	var req dto.ResetPasswordConfirmRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResetPasswordConfirm(ctx.Request.Context(), &req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ==================== 不透明令牌 ====================

// TokenLogin 登录并返回不透明令牌
// @Summary 邮箱密码换取不透明令牌
// @Description 之后以 "Authorization: Token {auth_token}" 访问需要登录的接口
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.TokenCreateRequest true "登录信息"
// @Success 200 {object} dto.AuthTokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/token/login [post]
func (c *AuthController) TokenLogin(ctx *gin.Context) {
	var req dto.TokenCreateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	token, err := c.authService.TokenLogin(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, token)
}

// TokenLogout 注销不透明令牌
// @Summary 删除当前用户的不透明令牌
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/token/logout [post]
func (c *AuthController) TokenLogout(ctx *gin.Context) {
	if err := c.authService.TokenLogout(ctx.Request.Context(), middleware.GetUserID(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ==================== JWT ====================

// CreateToken 登录
// @Summary 邮箱密码换取 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.TokenCreateRequest true "登录信息"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/jwt/create [post]
func (c *AuthController) CreateToken(ctx *gin.Context) {
	var req dto.TokenCreateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	pair, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pair)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Access Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.TokenRefreshRequest true "Refresh Token"
// @Success 200 {object} dto.TokenRefreshResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/jwt/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.TokenRefreshRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Refresh(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// VerifyToken 校验 Token
// @Summary 校验 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.TokenVerifyRequest true "Token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/jwt/verify [post]
func (c *AuthController) VerifyToken(ctx *gin.Context) {
	var req dto.TokenVerifyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.Verify(req.Token); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{})
}

// GoogleLogin Google 登录
// @Summary Google ID Token 登录
// @Description 邮箱对应的账号不存在时自动创建
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.GoogleLoginRequest true "Google ID Token"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/o/google [post]
func (c *AuthController) GoogleLogin(ctx *gin.Context) {
	var req dto.GoogleLoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	pair, err := c.authService.GoogleLogin(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pair)
}
