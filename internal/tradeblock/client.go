package tradeblock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tradeblock/internal/signing"
)

const (
	headerAccessKey       = "ACCESS-KEY"
	headerAccessSignature = "ACCESS-SIGNATURE"
	headerAccessNonce     = "ACCESS-NONCE"
)

// Client 负责签名并发送 TradeBlock API 请求，可并发使用。
type Client struct {
	opts   Options
	logger *zap.Logger
}

// New 校验配置并创建客户端。
func New(opts *Options) (*Client, error) {
	if opts == nil {
		return nil, &ConfigurationError{Msg: "must provide TradeBlock basic configuration"}
	}
	if err := opts.validate(); err != nil {
		return nil, &ConfigurationError{Msg: "invalid options", Err: err}
	}

	resolved := opts.resolve()
	if err := resolved.checkEndpoint(); err != nil {
		return nil, &ConfigurationError{Msg: "invalid endpoint", Err: err}
	}
	return &Client{
		opts:   resolved,
		logger: resolved.Logger.With(zap.String("host", resolved.Host)),
	}, nil
}

// NewFromMap 等价于 OptionsFromMap 后调用 New。
func NewFromMap(raw interface{}) (*Client, error) {
	opts, err := OptionsFromMap(raw)
	if err != nil {
		return nil, err
	}
	return New(opts)
}

// Host 返回生效的主机名（含 API 版本路径）。
func (c *Client) Host() string {
	return c.opts.Host
}

// Protocol 返回请求协议。
func (c *Client) Protocol() string {
	return c.opts.Protocol
}

// UserAgent 返回发送的 User-Agent。
func (c *Client) UserAgent() string {
	return c.opts.UserAgent
}

// BaseURL 返回 protocol://host。
func (c *Client) BaseURL() string {
	return c.opts.Protocol + "://" + c.opts.Host
}

// URI 根据 API 相对路径拼接完整地址。
func (c *Client) URI(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL() + path
}

// Execute 签名并发送一次请求。任意 HTTP 状态码都视为成功返回，
// 只有网络层失败会返回 *TransportError。不做重试。
func (c *Client) Execute(ctx context.Context, path string, method Method, params signing.Values) (*Response, error) {
	uri := c.URI(path)
	nonce := c.opts.Clock().UnixMilli()
	signature := signing.Sign(signing.Message(nonce, uri), params, c.opts.APISecret)

	req, err := newHTTPRequest(ctx, method, uri, params)
	if err != nil {
		var valErr *ValidationError
		if errors.As(err, &valErr) {
			return nil, err
		}
		return nil, &TransportError{Method: method, URI: uri, Err: err}
	}

	for name, value := range c.opts.Headers {
		req.Header.Set(name, value)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAccessKey, c.opts.APIKey)
	req.Header.Set(headerAccessSignature, signature)
	req.Header.Set(headerAccessNonce, strconv.FormatInt(nonce, 10))

	record := RequestRecord{
		ID:        uuid.NewString(),
		Method:    method,
		Path:      path,
		Nonce:     nonce,
		StartedAt: time.Now().UTC(),
	}

	start := time.Now()
	resp, err := c.send(req)
	record.Latency = time.Since(start)

	if err != nil {
		transportErr := &TransportError{Method: method, URI: uri, Err: err}
		record.Err = transportErr
		c.logger.Warn("TradeBlock 请求失败",
			zap.String("request_id", record.ID),
			zap.Stringer("method", method),
			zap.String("path", path),
			zap.Int64("nonce", nonce),
			zap.Duration("latency", record.Latency),
			zap.Error(err),
		)
		c.record(ctx, record)
		return nil, transportErr
	}

	record.StatusCode = resp.StatusCode
	c.logger.Debug("TradeBlock 请求完成",
		zap.String("request_id", record.ID),
		zap.Stringer("method", method),
		zap.String("path", path),
		zap.Int64("nonce", nonce),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", record.Latency),
	)
	c.record(ctx, record)

	return resp, nil
}

func (c *Client) send(req *http.Request) (*Response, error) {
	httpResp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	return newResponse(httpResp.StatusCode, httpResp.Header, body), nil
}

func (c *Client) record(ctx context.Context, record RequestRecord) {
	if c.opts.Recorder == nil {
		return
	}
	c.opts.Recorder.RecordRequest(ctx, record)
}
