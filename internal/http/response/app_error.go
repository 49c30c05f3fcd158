package response

// AppError 携带消息 key 的接口错误，Message 为 key 解析后的文案
type AppError struct {
	Code    int
	Key     string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Key
	}
	return e.Key + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Internal 是否为服务端错误
func (e *AppError) Internal() bool {
	return e.Code >= CodeInternal
}

// NewAppError 按消息 key 构建错误
func NewAppError(code int, key string, err error) *AppError {
	return &AppError{
		Code:    code,
		Key:     key,
		Message: Message(key),
		Err:     err,
	}
}
