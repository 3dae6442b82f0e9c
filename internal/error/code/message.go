package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高",
	ErrDatabase:        "数据库错误",
	ErrRecordNotFound:  "记录不存在",

	// 用户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户已存在",
	ErrUserPasswordIncorrect: "用户密码错误",

	// 访客相关错误码
	ErrVisitNotFound:   "访客记录不存在",
	ErrVisitValidation: "访客登记信息不完整",
	ErrVisitQuery:      "访客记录查询失败",
	ErrDashboardQuery:  "看板数据查询失败",

	// 自拍存储相关错误码
	ErrSelfieMalformed: "自拍数据格式错误",
	ErrSelfieUpload:    "自拍上传失败",
	ErrSelfieSignature: "自拍访问签名无效",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrDatabase:        StatusInternalServerError,
	ErrRecordNotFound:  StatusNotFound,

	// 用户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// 访客相关错误码
	ErrVisitNotFound:   StatusNotFound,
	ErrVisitValidation: StatusBadRequest,
	ErrVisitQuery:      StatusInternalServerError,
	ErrDashboardQuery:  StatusInternalServerError,

	// 自拍存储相关错误码
	ErrSelfieMalformed: StatusBadRequest,
	ErrSelfieUpload:    StatusInternalServerError,
	ErrSelfieSignature: StatusForbidden,
}
