package form

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// SignUpOrInForm 邮箱登录表单。账号不存在时自动注册。
type SignUpOrInForm struct {
	Email string `json:"email" form:"email"`
	Name  string `json:"name" form:"name"`
}

func (f *SignUpOrInForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Email, validation.Required, is.Email),
	)
}

// AccountUpdateForm 更新用户信息，空字段不更新。
type AccountUpdateForm struct {
	Name   string `json:"name" form:"name"`
	Avatar string `json:"avatar" form:"avatar"`
	Role   string `json:"role" form:"role"`
}

func (f *AccountUpdateForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Role, validation.In("interviewer", "candidate")),
	)
}
