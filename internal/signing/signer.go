package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// ParamSet 表示参与签名的参数集合。
type ParamSet interface {
	// Canonical 返回按字节序排好的 key=value 序列。
	Canonical() []string
	Len() int
}

// Values 为键值形式的请求参数。
type Values map[string]interface{}

// Pairs 为已渲染好的 key=value 序列，签名前仅做排序。
type Pairs []string

var (
	_ ParamSet = Values(nil)
	_ ParamSet = Pairs(nil)
)

// Len 返回参数个数。
func (v Values) Len() int {
	return len(v)
}

// Canonical 按键名排序后渲染为 key=value。
func (v Values) Canonical() []string {
	if len(v) == 0 {
		return nil
	}

	out := make([]string, 0, len(v))
	for _, key := range v.sortedKeys() {
		out = append(out, key+"="+FormatValue(v[key]))
	}
	return out
}

// Encode 以 application/x-www-form-urlencoded 格式编码参数，键名有序。
// 值的渲染与签名一致，保证发送内容与签名内容相同。
func (v Values) Encode() string {
	if len(v) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, key := range v.sortedKeys() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(queryEscape(key))
		sb.WriteByte('=')
		sb.WriteString(queryEscape(FormatValue(v[key])))
	}
	return sb.String()
}

func (v Values) sortedKeys() []string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len 返回参数个数。
func (p Pairs) Len() int {
	return len(p)
}

// Canonical 返回排序后的副本，不修改原切片。
func (p Pairs) Canonical() []string {
	if len(p) == 0 {
		return nil
	}

	out := make([]string, len(p))
	copy(out, p)
	sort.Strings(out)
	return out
}

// Canonicalize 生成确定性的参数序列；空参数返回 nil。
func Canonicalize(params ParamSet) []string {
	if params == nil || params.Len() == 0 {
		return nil
	}
	return params.Canonical()
}

// Message 拼接签名前缀：毫秒 nonce 与完整 URI 之间没有分隔符。
func Message(nonce int64, uri string) string {
	return strconv.FormatInt(nonce, 10) + uri
}

// Payload 返回实际参与 HMAC 计算的字符串。
func Payload(message string, params ParamSet) string {
	ordered := Canonicalize(params)
	if len(ordered) == 0 {
		return message
	}
	return message + strings.Join(ordered, "&")
}

// Sign 计算 HMAC-SHA256 并返回小写十六进制摘要。
func Sign(message string, params ParamSet, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(Payload(message, params)))
	return hex.EncodeToString(mac.Sum(nil))
}
