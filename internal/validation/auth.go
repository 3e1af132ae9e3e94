package validation

import "shopfront/internal/pkg/xerrors"

// LoginInput 登录
type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// RegisterInput 注册
type RegisterInput struct {
	Name            string `json:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// RefreshInput 刷新令牌
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UpdateProfileInput 修改个人资料，至少提供一个字段
type UpdateProfileInput struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

func (in UpdateProfileInput) Refine() []xerrors.FieldError {
	if in.Name == "" && in.Phone == "" {
		return []xerrors.FieldError{{Field: "name", Tag: "required"}}
	}
	return nil
}
