package dto

// ==================== 用户 ====================

// UserRequest 创建 / 替换用户
type UserRequest struct {
	Username  string `json:"username" binding:"required,max=150,username" example:"ali"`
	Email     string `json:"email" binding:"required,email,max=254" example:"ali@example.com"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Password  string `json:"password" binding:"required,max=128,password"`
}

// UserResponse 用户信息，不含密码
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ==================== 激活 / 密码 ====================

// ActivationRequest 激活账号
type ActivationRequest struct {
	UID   string `json:"uid" binding:"required"`
	Token string `json:"token" binding:"required"`
}

// EmailRequest 重发激活邮件 / 申请重置密码
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SetPasswordRequest 登录状态下修改密码
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,max=128,password"`
}

// ResetPasswordConfirmRequest 通过邮件链接重置密码
type ResetPasswordConfirmRequest struct {
	UID         string `json:"uid" binding:"required"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=128,password"`
}

// ==================== JWT ====================

// TokenCreateRequest 邮箱密码换取令牌
type TokenCreateRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ali@example.com"`
	Password string `json:"password" binding:"required"`
}

// TokenPairResponse 访问令牌 + 刷新令牌
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthTokenResponse 不透明登录令牌
type AuthTokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// TokenRefreshRequest 刷新令牌
type TokenRefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// TokenRefreshResponse 新的访问令牌
type TokenRefreshResponse struct {
	Access string `json:"access"`
}

// TokenVerifyRequest 校验令牌
type TokenVerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// GoogleLoginRequest Google 登录
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}
