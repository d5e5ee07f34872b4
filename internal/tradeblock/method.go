package tradeblock

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tradeblock/internal/signing"
)

// Method 为支持的 HTTP 动词。
type Method int

const (
	MethodGet Method = iota + 1
	MethodPost
	MethodPut
	MethodDelete
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return http.MethodGet
	case MethodPost:
		return http.MethodPost
	case MethodPut:
		return http.MethodPut
	case MethodDelete:
		return http.MethodDelete
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod 将动词字符串转换为 Method，大小写不敏感。
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case http.MethodGet:
		return MethodGet, nil
	case http.MethodPost:
		return MethodPost, nil
	case http.MethodPut:
		return MethodPut, nil
	case http.MethodDelete:
		return MethodDelete, nil
	default:
		return 0, &ValidationError{Field: "method", Msg: fmt.Sprintf("unsupported verb %q", s)}
	}
}

// newHTTPRequest 按动词决定参数位置：GET 放查询串，POST/PUT 放表单，DELETE 忽略参数。
func newHTTPRequest(ctx context.Context, method Method, uri string, params signing.Values) (*http.Request, error) {
	switch method {
	case MethodGet:
		target := uri
		if encoded := params.Encode(); encoded != "" {
			target += "?" + encoded
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	case MethodPost, MethodPut:
		req, err := http.NewRequestWithContext(ctx, method.String(), uri, strings.NewReader(params.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	case MethodDelete:
		return http.NewRequestWithContext(ctx, http.MethodDelete, uri, nil)
	default:
		return nil, &ValidationError{Field: "method", Msg: fmt.Sprintf("unsupported verb %s", method)}
	}
}
