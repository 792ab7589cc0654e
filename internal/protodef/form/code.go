package form

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CodeUpdateForm 写回代码缓冲区。语言随代码一并落库，保持buffer与
// language同源（与前端行为一致，服务端不解耦）。
type CodeUpdateForm struct {
	Code     string `json:"code" form:"code"`
	Language string `json:"language" form:"language"`
}

func (f *CodeUpdateForm) Validate() error {
	// 代码可为空串（清空buffer也是一次合法写），语言缺省由store补默认值。
	return nil
}

// LanguageUpdateForm 切换语言。取值不做服务端校验，沿用客户端约束。
type LanguageUpdateForm struct {
	Language string `json:"language" form:"language"`
}

func (f *LanguageUpdateForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Language, validation.Required),
	)
}

// OutputUpdateForm 写回执行输出。
type OutputUpdateForm struct {
	Output string `json:"output" form:"output"`
}

func (f *OutputUpdateForm) Validate() error {
	return nil
}

// RunForm 触发一次执行。code缺省时取store中的当前buffer。
type RunForm struct {
	Code     string `json:"code" form:"code"`
	Language string `json:"language" form:"language"`
}

func (f *RunForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Language, validation.Required),
	)
}
