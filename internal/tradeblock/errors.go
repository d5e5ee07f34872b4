package tradeblock

import "fmt"

// ConfigurationError 表示客户端配置缺失或不合法，需要重新构造客户端。
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tradeblock: configuration error: %s: %v", e.Msg, e.Err)
	}
	return "tradeblock: configuration error: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ValidationError 表示调用参数缺失，在发起网络请求之前返回。
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tradeblock: invalid %s: %s", e.Field, e.Msg)
}

// TransportError 包装网络层失败（DNS、连接拒绝、超时等）。
type TransportError struct {
	Method Method
	URI    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tradeblock: %s %s: %v", e.Method, e.URI, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &ValidationError{Field: field, Msg: "must be provided"}
}
