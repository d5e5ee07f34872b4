package tradeblock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Response 为服务端原样返回的结果，状态码语义交由调用方判断。
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Data 为 JSON 解析结果（数字保持 json.Number），非 JSON 时为原始字符串。
	Data interface{}
}

func newResponse(status int, header http.Header, body []byte) *Response {
	resp := &Response{
		StatusCode: status,
		Header:     header,
		Body:       body,
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return resp
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var data interface{}
	if err := decoder.Decode(&data); err != nil || decoder.More() {
		resp.Data = string(body)
		return resp
	}
	resp.Data = data
	return resp
}

// OK 报告状态码是否为 2xx。
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode 将响应体解析到 v。
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("解析响应JSON失败: %w", err)
	}
	return nil
}

// RequestRecord 描述一次请求尝试，用于审计记录；不包含密钥与签名。
type RequestRecord struct {
	ID         string
	Method     Method
	Path       string
	Nonce      int64
	StatusCode int
	Latency    time.Duration
	StartedAt  time.Time
	Err        error
}

// Recorder 接收每次请求的记录，实现方需自行处理写入失败。
type Recorder interface {
	RecordRequest(ctx context.Context, record RequestRecord)
}
