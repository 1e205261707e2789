package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"priceoye_shop_v1/internal/config"
)

// GoogleUserInfo tokeninfo 接口返回的用户信息
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"` // 接口返回字符串 "true"/"false"
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// Verified 邮箱是否经过 Google 验证
func (u *GoogleUserInfo) Verified() bool {
	return u.EmailVerified == "true"
}

// GoogleVerifier 校验前端传来的 Google ID Token
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error)
}

type googleVerifier struct {
	client   *resty.Client
	url      string
	clientID string
}

// NewGoogleVerifier 创建校验器，未配置 clientID 时拒绝所有 token
func NewGoogleVerifier(cfg config.GoogleConfig) GoogleVerifier {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")
	return &googleVerifier{
		client:   client,
		url:      cfg.TokenInfoURL,
		clientID: cfg.ClientID,
	}
}

func (g *googleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
	if g.clientID == "" {
		return nil, fmt.Errorf("%w: 未配置 google.client_id", ErrInvalidToken)
	}

	var info GoogleUserInfo
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("id_token", idToken).
		SetResult(&info).
		Get(g.url)
	if err != nil {
		return nil, fmt.Errorf("请求 Google tokeninfo 失败: %w", err)
	}
	if resp.IsError() {
		return nil, ErrInvalidToken
	}

	if info.Aud != g.clientID {
		return nil, fmt.Errorf("%w: token 不是签发给本应用的", ErrInvalidToken)
	}
	if info.Email == "" {
		return nil, ErrInvalidToken
	}
	return &info, nil
}
