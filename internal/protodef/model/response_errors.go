package model

type ResponseError struct {
	// 自定义错误码。
	Code int `json:"code"`
	// 请求ID。
	RequestID string `json:"requestID"`
	// Message
	Message string `json:"message"`
}

const (
	ResponseErrorBadRequest      = 400000
	ResponseErrorNotLoggedIn     = 401001
	ResponseErrorBadToken        = 401003
	ResponseErrorValidation      = 401005
	ResponseErrorNoPermission    = 403001
	ResponseErrorNoSuchUser      = 404001
	ResponseErrorNoSuchMeeting   = 404002
	ResponseErrorNoSuchAction    = 404005
	ResponseErrorNotFound        = 404000
	ResponseErrorInternal        = 500000
	ResponseErrorExternalService = 502001
)

// NewResponseErrorBadRequest 参数错误。
func NewResponseErrorBadRequest() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadRequest,
		Message: "参数错误",
	}
}

// NewResponseErrorNotLoggedIn 用户未登录。
func NewResponseErrorNotLoggedIn() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotLoggedIn,
		Message: "not logged in",
	}
}

// NewResponseErrorBadToken 登录token错误。
func NewResponseErrorBadToken() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadToken,
		Message: "bad token",
	}
}

// NewResponseErrorValidation 表单校验错误。
func NewResponseErrorValidation(err error) *ResponseError {
	message := "validation failed"
	if err != nil {
		message = err.Error()
	}
	return &ResponseError{
		Code:    ResponseErrorValidation,
		Message: message,
	}
}

// NewResponseErrorNoPermission 角色权限不足。
func NewResponseErrorNoPermission() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoPermission,
		Message: "no permission",
	}
}

// NewResponseErrorNoSuchUser 无此用户。
func NewResponseErrorNoSuchUser() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchUser,
		Message: "no such user",
	}
}

// NewResponseErrorNoSuchMeeting 无此会议。
func NewResponseErrorNoSuchMeeting() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchMeeting,
		Message: "no such meeting",
	}
}

// NewResponseErrorNoSuchAction 未注册的assistant动作。
func NewResponseErrorNoSuchAction() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchAction,
		Message: "no such action",
	}
}

// NewResponseErrorInternal 其他内部服务错误。
func NewResponseErrorInternal() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorInternal,
		Message: "internal server error",
	}
}

// NewResponseErrorExternalService 调用外部服务错误。
func NewResponseErrorExternalService() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorExternalService,
		Message: "calling external service failed",
	}
}

func NewResponseErrorNotFound() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotFound,
		Message: "not found",
	}
}
