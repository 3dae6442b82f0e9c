package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)

// 用户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户密码错误.
	ErrUserPasswordIncorrect
)

// 访客相关错误码 (102xxx).
const (
	// ErrVisitNotFound - 404: 访客记录不存在.
	ErrVisitNotFound int = iota + 102000
	// ErrVisitValidation - 400: 访客登记信息不完整.
	ErrVisitValidation
	// ErrVisitQuery - 500: 访客记录查询失败.
	ErrVisitQuery
	// ErrDashboardQuery - 500: 看板数据查询失败.
	ErrDashboardQuery
)

// 自拍存储相关错误码 (103xxx).
const (
	// ErrSelfieMalformed - 400: 自拍数据格式错误.
	ErrSelfieMalformed int = iota + 103000
	// ErrSelfieUpload - 500: 自拍上传失败.
	ErrSelfieUpload
	// ErrSelfieSignature - 403: 自拍访问签名无效.
	ErrSelfieSignature
)

// GetMessage 根据错误码获取对应的消息
func GetMessage(errorCode int) string {
	if message, exists := codeMessageMap[errorCode]; exists {
		return message
	}
	return codeMessageMap[ErrUnknown]
}

// GetStatus 根据错误码获取对应的HTTP状态码
func GetStatus(errorCode int) int {
	if status, exists := codeStatusMap[errorCode]; exists {
		return status
	}
	return StatusInternalServerError
}
