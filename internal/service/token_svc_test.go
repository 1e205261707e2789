package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priceoye_shop_v1/internal/model"
)

func TestActionTokenService(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewActionTokenService("test-secret", 72*time.Hour)
	svc.now = func() time.Time { return now }

	user := &model.User{BaseModel: model.BaseModel{ID: 5}, Email: "ali@example.com", Password: "hash-1"}

	token, err := svc.Make(user, PurposeActivation)
	require.NoError(t, err)

	assert.True(t, svc.Check(user, PurposeActivation, token))
	assert.False(t, svc.Check(user, PurposePasswordReset, token), "用途不同")

	other := *user
	other.ID = 6
	assert.False(t, svc.Check(&other, PurposeActivation, token), "用户不同")

	changed := *user
	changed.Password = "hash-2"
	assert.False(t, svc.Check(&changed, PurposeActivation, token), "改密码后失效")

	loggedIn := *user
	loggedIn.LastLogin = &now
	assert.False(t, svc.Check(&loggedIn, PurposeActivation, token), "登录后失效")

	assert.False(t, NewActionTokenService("other-secret", time.Hour).Check(user, PurposeActivation, token), "密钥不同")
	assert.False(t, svc.Check(user, PurposeActivation, "garbage"))

	now = now.Add(73 * time.Hour)
	assert.False(t, svc.Check(user, PurposeActivation, token), "过期")
}

func TestUID(t *testing.T) {
	uid := EncodeUID(42)
	assert.Equal(t, "NDI", uid)

	id, err := DecodeUID(uid)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = DecodeUID("NDI=")
	require.NoError(t, err, "兼容补位")
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "!!!", EncodeUID(0), "YWJj"} {
		_, err := DecodeUID(bad)
		assert.Error(t, err, bad)
	}
}
