package journal

import "time"

// Entry 为一条请求审计记录，不包含密钥与签名。
type Entry struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Nonce      int64     `json:"nonce"`
	StatusCode int       `json:"status_code,omitempty"`
	LatencyMS  int64     `json:"latency_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Failed 报告该请求是否在网络层失败。
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Filter 控制检索条件，零值表示不过滤。
type Filter struct {
	Method     string
	PathPrefix string
	FailedOnly bool
	Limit      int
}
