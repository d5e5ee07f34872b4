package tradeblock

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"tradeblock/internal/signing"
)

const (
	pathUserInfo         = "/user/info"
	pathCounterparties   = "/user/counterparties"
	pathTrade            = "/trade"
	pathTradeCancel      = "/trade/cancel"
	pathOpenTrades       = "/open_trades"
	pathOpenTradesSmart  = "/open_trades/smart"
	maxConcurrentLookups = 4
)

// SettlementAction 为交割确认动作。
type SettlementAction string

const (
	ActionBitcoinSent     SettlementAction = "BITCOIN_SENT"
	ActionFiatSent        SettlementAction = "FIAT_SENT"
	ActionBitcoinReceived SettlementAction = "BITCOIN_RECEIVED"
	ActionFiatReceived    SettlementAction = "FIAT_RECEIVED"
)

// ParseSettlementAction 解析动作名称，大小写不敏感。
func ParseSettlementAction(s string) (SettlementAction, error) {
	action := SettlementAction(strings.ToUpper(strings.TrimSpace(s)))
	switch action {
	case ActionBitcoinSent, ActionFiatSent, ActionBitcoinReceived, ActionFiatReceived:
		return action, nil
	default:
		return "", &ValidationError{Field: "action", Msg: fmt.Sprintf("unknown settlement action %q", s)}
	}
}

// GetUserInfo 获取当前用户信息。
func (c *Client) GetUserInfo(ctx context.Context) (*Response, error) {
	return c.Execute(ctx, pathUserInfo, MethodGet, signing.Values{})
}

// SetUserInfo 更新用户信息。
func (c *Client) SetUserInfo(ctx context.Context, userID string, params signing.Values) (*Response, error) {
	if err := checkID("userId", userID); err != nil {
		return nil, err
	}
	return c.Execute(ctx, pathUserInfo+"/"+url.PathEscape(userID), MethodPost, params)
}

func (c *Client) ListCounterparties(ctx context.Context) (*Response, error) {
	return c.Execute(ctx, pathCounterparties, MethodGet, signing.Values{})
}

func (c *Client) SetCounterparties(ctx context.Context, params signing.Values) (*Response, error) {
	return c.Execute(ctx, pathCounterparties, MethodPost, params)
}

// ListTrades 按条件查询交易列表。
func (c *Client) ListTrades(ctx context.Context, params signing.Values) (*Response, error) {
	return c.Execute(ctx, pathTrade, MethodGet, params)
}

// GetTrade 查询单笔交易。
func (c *Client) GetTrade(ctx context.Context, tradeID string) (*Response, error) {
	if err := checkID("tradeId", tradeID); err != nil {
		return nil, err
	}
	return c.Execute(ctx, tradePath(tradeID), MethodGet, signing.Values{})
}

// GetTrades 并发查询多笔交易，结果顺序与入参一致。
// 任一请求出现网络错误时取消其余请求。
func (c *Client) GetTrades(ctx context.Context, tradeIDs ...string) ([]*Response, error) {
	if len(tradeIDs) == 0 {
		return nil, missing("tradeIds")
	}
	for _, id := range tradeIDs {
		if err := checkID("tradeId", id); err != nil {
			return nil, err
		}
	}

	results := make([]*Response, len(tradeIDs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentLookups)

	for i, id := range tradeIDs {
		group.Go(func() error {
			resp, err := c.GetTrade(groupCtx, id)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// NewQuote 发起新报价。
func (c *Client) NewQuote(ctx context.Context, params signing.Values) (*Response, error) {
	return c.Execute(ctx, pathTrade, MethodPost, params)
}

// Counterquote 对已有交易还价。
func (c *Client) Counterquote(ctx context.Context, tradeID string, params signing.Values) (*Response, error) {
	if err := checkID("tradeId", tradeID); err != nil {
		return nil, err
	}
	return c.Execute(ctx, tradePath(tradeID), MethodPost, params)
}

// AcceptQuote 接受报价。
func (c *Client) AcceptQuote(ctx context.Context, tradeID string) (*Response, error) {
	if err := checkID("tradeId", tradeID); err != nil {
		return nil, err
	}
	return c.Execute(ctx, tradePath(tradeID), MethodPost, signing.Values{"accept": true})
}

// CancelQuote 批量撤销报价，trades 以逗号拼接发送。
func (c *Client) CancelQuote(ctx context.Context, tradeIDs ...string) (*Response, error) {
	if len(tradeIDs) == 0 {
		return nil, missing("trades")
	}
	return c.Execute(ctx, pathTradeCancel, MethodPost, signing.Values{"trades": strings.Join(tradeIDs, ",")})
}

// ListQuickTrades 查询公开的快速交易，可按资产过滤。
func (c *Client) ListQuickTrades(ctx context.Context, assets ...string) (*Response, error) {
	var params signing.Values
	if len(assets) > 0 {
		params = signing.Values{"assets": strings.Join(assets, ",")}
	}
	return c.Execute(ctx, pathOpenTrades, MethodGet, params)
}

func (c *Client) ListQuickTradesSmart(ctx context.Context, params signing.Values) (*Response, error) {
	return c.Execute(ctx, pathOpenTradesSmart, MethodPost, params)
}

func (c *Client) AcceptQuickTrade(ctx context.Context, params signing.Values) (*Response, error) {
	return c.Execute(ctx, pathTrade, MethodPost, params)
}

// ProvideBitcoinAddress 为交易提供收币地址。
func (c *Client) ProvideBitcoinAddress(ctx context.Context, tradeID string, params signing.Values) (*Response, error) {
	if err := checkID("tradeId", tradeID); err != nil {
		return nil, err
	}
	return c.Execute(ctx, tradePath(tradeID), MethodPost, params)
}

// ProvideBankAccount 为交易提供收款银行账户。
func (c *Client) ProvideBankAccount(ctx context.Context, tradeID string, params signing.Values) (*Response, error) {
	if err := checkID("tradeId", tradeID); err != nil {
		return nil, err
	}
	return c.Execute(ctx, tradePath(tradeID), MethodPost, params)
}

func (c *Client) BitcoinSentConfirmation(ctx context.Context, tradeID string) (*Response, error) {
	return c.ConfirmSettlement(ctx, tradeID, ActionBitcoinSent)
}

func (c *Client) FiatSentConfirmation(ctx context.Context, tradeID string) (*Response, error) {
	return c.ConfirmSettlement(ctx, tradeID, ActionFiatSent)
}

// BitcoinReceivedConfirmation 沿用服务端现有行为发送 FIAT_RECEIVED。
// TODO: 与 TradeBlock 确认此处是否应改为 ActionBitcoinReceived；需要时可直接调用 ConfirmSettlement。
func (c *Client) BitcoinReceivedConfirmation(ctx context.Context, tradeID string) (*Response, error) {
	return c.ConfirmSettlement(ctx, tradeID, ActionFiatReceived)
}

func (c *Client) FiatReceivedConfirmation(ctx context.Context, tradeID string) (*Response, error) {
	return c.ConfirmSettlement(ctx, tradeID, ActionFiatReceived)
}

// ConfirmSettlement 提交交割确认动作。
func (c *Client) ConfirmSettlement(ctx context.Context, tradeID string, action SettlementAction) (*Response, error) {
	if err := checkID("tradeId", tradeID); err != nil {
		return nil, err
	}
	parsed, err := ParseSettlementAction(string(action))
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, tradePath(tradeID), MethodPost, signing.Values{"action": string(parsed)})
}

// checkID 校验拼入路径的标识，不允许为空或携带路径、查询分隔符。
func checkID(field, id string) error {
	if id == "" {
		return missing(field)
	}
	if strings.ContainsAny(id, "/?#") {
		return &ValidationError{Field: field, Msg: fmt.Sprintf("must not contain '/', '?' or '#': %q", id)}
	}
	return nil
}

func tradePath(tradeID string) string {
	return pathTrade + "/" + url.PathEscape(tradeID)
}
