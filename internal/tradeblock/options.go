package tradeblock

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultProtocol  = "https"
	DefaultHost      = "tradeblock.com/api/v1.1"
	DefaultUserAgent = "TradeBlock-Go-SDK"

	demoHostPrefix = "demo."
)

// Options 为客户端构造参数，构造后不再修改。
type Options struct {
	APIKey    string `mapstructure:"API_KEY"`
	APISecret string `mapstructure:"API_SECRET"`
	Demo      bool   `mapstructure:"demo"`
	Protocol  string `mapstructure:"protocol"`
	Host      string `mapstructure:"host"`
	UserAgent string `mapstructure:"userAgent"`
	// Headers 为附加请求头，不能覆盖 ACCESS-* 认证头。
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`

	HTTPClient *http.Client     `mapstructure:"-"`
	Logger     *zap.Logger      `mapstructure:"-"`
	Clock      func() time.Time `mapstructure:"-"`
	Recorder   Recorder         `mapstructure:"-"`
}

// OptionsFromMap 解析松散的记录形式配置：
// {API_KEY, API_SECRET, demo, protocol, host, userAgent, headers, timeout}。
// 未知字段视为配置错误，额外请求头只能通过 headers 传入。
func OptionsFromMap(raw interface{}) (*Options, error) {
	if raw == nil {
		return nil, &ConfigurationError{Msg: "must provide TradeBlock basic configuration"}
	}
	record, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &ConfigurationError{Msg: "config needs to be a key/value record"}
	}

	var opts Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, &ConfigurationError{Msg: "build decoder", Err: err}
	}
	if err := decoder.Decode(record); err != nil {
		return nil, &ConfigurationError{Msg: "decode config", Err: err}
	}

	return &opts, nil
}

// resolve 合并默认值：demo 前缀只作用于默认 host，显式 host 始终优先。
func (o Options) resolve() Options {
	resolved := o

	host := DefaultHost
	if o.Demo {
		host = demoHostPrefix + host
	}
	if strings.TrimSpace(o.Host) != "" {
		host = strings.TrimSpace(o.Host)
	}
	resolved.Host = strings.TrimSuffix(host, "/")

	if resolved.Protocol == "" {
		resolved.Protocol = DefaultProtocol
	}
	resolved.Protocol = strings.TrimSuffix(resolved.Protocol, "://")

	if resolved.UserAgent == "" {
		resolved.UserAgent = DefaultUserAgent
	}
	if resolved.Logger == nil {
		resolved.Logger = zap.NewNop()
	}
	if resolved.Clock == nil {
		resolved.Clock = time.Now
	}
	if resolved.HTTPClient == nil {
		resolved.HTTPClient = &http.Client{Timeout: resolved.Timeout}
	}

	if len(o.Headers) > 0 {
		headers := make(map[string]string, len(o.Headers))
		for k, v := range o.Headers {
			headers[k] = v
		}
		resolved.Headers = headers
	}

	return resolved
}

func (o Options) validate() error {
	var err error
	if strings.TrimSpace(o.APIKey) == "" {
		err = multierr.Append(err, errors.New("API_KEY is mandatory"))
	}
	if strings.TrimSpace(o.APISecret) == "" {
		err = multierr.Append(err, errors.New("API_SECRET is mandatory"))
	}
	for name := range o.Headers {
		if isAuthHeader(name) {
			err = multierr.Append(err, errors.New("headers must not override "+strings.ToUpper(name)))
		}
	}
	if o.Timeout < 0 {
		err = multierr.Append(err, errors.New("timeout must not be negative"))
	}
	return err
}

// checkEndpoint 确认 protocol://host 能解析为不带查询串的绝对地址。
func (o Options) checkEndpoint() error {
	base := o.Protocol + "://" + o.Host
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("no host in %q", base)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("host must not carry query or fragment: %q", o.Host)
	}
	return nil
}

func isAuthHeader(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case headerAccessKey, headerAccessSignature, headerAccessNonce:
		return true
	default:
		return false
	}
}
