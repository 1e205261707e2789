package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"priceoye_shop_v1/internal/api/dto"
	"priceoye_shop_v1/internal/middleware"
	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/repository"
)

// ==================== UserService 用户服务 ====================

// UserService 用户增删改查，密码只写不读
type UserService = CrudService[model.User, dto.UserRequest, dto.UserResponse]

// bcryptCost 测试里调低以加快速度
var bcryptCost = bcrypt.DefaultCost

type userSchema struct {
	users repository.CrudRepository[model.User]
}

// NewUserService 创建用户服务
// 通过该接口创建的用户直接是激活状态，注册流程见 AuthService
func NewUserService(users repository.UserRepository) *UserService {
	return NewCrudService[model.User, dto.UserRequest, dto.UserResponse](users, userSchema{users: users})
}

func (s userSchema) Validate(ctx context.Context, id int64, req *dto.UserRequest) error {
	errs := FieldErrors{}
	if err := checkUnique(ctx, errs, s.users, "username", "username", req.Username, id); err != nil {
		return err
	}
	if err := checkUnique(ctx, errs, s.users, "email", "email", req.Email, id); err != nil {
		return err
	}
	return errs.OrNil()
}

func (userSchema) Apply(req *dto.UserRequest, m *model.User) error {
	hashed, err := hashPassword("password", req.Password)
	if err != nil {
		return err
	}
	if m.ID == 0 {
		m.IsActive = true
	}
	m.Username = req.Username
	m.Email = req.Email
	m.FirstName = req.FirstName
	m.LastName = req.LastName
	m.Password = hashed
	return nil
}

func (userSchema) Render(m *model.User) dto.UserResponse {
	return toUserResponse(m)
}

func toUserResponse(m *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
	}
}

// ==================== 密码 ====================

// hashPassword 超长密码作为 field 的校验错误返回
func hashPassword(field, raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", FieldErrors{field: fmt.Sprintf("确保密码不超过 %d 字节。", middleware.PasswordMaxBytes)}
	}
	if err != nil {
		return "", fmt.Errorf("密码加密失败: %w", err)
	}
	return string(hashed), nil
}

func checkPassword(hashed, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}
