package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tradeblock/internal/journal"
	"tradeblock/internal/signing"
	"tradeblock/internal/tradeblock"
)

type responseFunc func(cmd *cobra.Command, args []string, params signing.Values) (*tradeblock.Response, error)

// newCallCommand 生成不接受请求参数的单请求子命令。
func newCallCommand(use, short string, args cobra.PositionalArgs, call responseFunc) *cobra.Command {
	return buildCallCommand(use, short, args, call, nil)
}

// newParamCommand 生成带 --param 的单请求子命令。
func newParamCommand(use, short string, args cobra.PositionalArgs, call responseFunc) *cobra.Command {
	var rawParams []string
	return buildCallCommand(use, short, args, call, &rawParams)
}

func buildCallCommand(use, short string, args cobra.PositionalArgs, call responseFunc, rawParams *[]string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			var params signing.Values
			if rawParams != nil {
				parsed, err := parseParams(*rawParams)
				if err != nil {
					return err
				}
				params = parsed
			}
			resp, err := call(cmd, args, params)
			if err != nil {
				return err
			}
			return printResponse(cmd, resp)
		},
	}
	if rawParams != nil {
		addParamsFlag(cmd, rawParams)
	}
	return cmd
}

func newUserCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "用户信息"}
	cmd.AddCommand(
		newCallCommand("info", "查询当前用户信息", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, _ signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().GetUserInfo(cmd.Context())
			}),
		newParamCommand("set <userId>", "更新用户信息", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, params signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().SetUserInfo(cmd.Context(), args[0], params)
			}),
	)
	return cmd
}

func newCounterpartiesCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{Use: "counterparties", Short: "交易对手"}
	cmd.AddCommand(
		newCallCommand("list", "列出交易对手", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, _ signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().ListCounterparties(cmd.Context())
			}),
		newParamCommand("set", "设置交易对手", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, params signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().SetCounterparties(cmd.Context(), params)
			}),
	)
	return cmd
}

func newTradesCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{Use: "trades", Short: "报价与交易"}

	get := &cobra.Command{
		Use:   "get <tradeId>...",
		Short: "查询一笔或多笔交易",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			responses, err := rt.app.Client().GetTrades(cmd.Context(), args...)
			if err != nil {
				return err
			}
			return printResponses(cmd, responses)
		},
	}

	cmd.AddCommand(
		newParamCommand("list", "按条件列出交易", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, params signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().ListTrades(cmd.Context(), params)
			}),
		get,
		newParamCommand("quote", "发起新报价", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, params signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().NewQuote(cmd.Context(), params)
			}),
		newParamCommand("counter <tradeId>", "还价", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, params signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().Counterquote(cmd.Context(), args[0], params)
			}),
		newCallCommand("accept <tradeId>", "接受报价", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, _ signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().AcceptQuote(cmd.Context(), args[0])
			}),
		newCallCommand("cancel <tradeId>...", "撤销报价", cobra.MinimumNArgs(1),
			func(cmd *cobra.Command, args []string, _ signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().CancelQuote(cmd.Context(), args...)
			}),
	)
	return cmd
}

func newQuickTradesCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{Use: "quick-trades", Short: "快速交易"}
	cmd.AddCommand(
		newCallCommand("list [asset]...", "列出公开快速交易", cobra.ArbitraryArgs,
			func(cmd *cobra.Command, args []string, _ signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().ListQuickTrades(cmd.Context(), args...)
			}),
		newParamCommand("smart", "智能匹配快速交易", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, params signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().ListQuickTradesSmart(cmd.Context(), params)
			}),
		newParamCommand("accept", "接受快速交易", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, params signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().AcceptQuickTrade(cmd.Context(), params)
			}),
	)
	return cmd
}

func newSettleCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{Use: "settle", Short: "交割"}
	cmd.AddCommand(
		newParamCommand("address <tradeId>", "提供收币地址", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, params signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().ProvideBitcoinAddress(cmd.Context(), args[0], params)
			}),
		newParamCommand("bank <tradeId>", "提供银行账户", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, params signing.Values) (*tradeblock.Response, error) {
				return rt.app.Client().ProvideBankAccount(cmd.Context(), args[0], params)
			}),
		newCallCommand("confirm <action> <tradeId>", "确认交割：bitcoin_sent|fiat_sent|bitcoin_received|fiat_received", cobra.ExactArgs(2),
			func(cmd *cobra.Command, args []string, _ signing.Values) (*tradeblock.Response, error) {
				action, err := tradeblock.ParseSettlementAction(args[0])
				if err != nil {
					return nil, err
				}
				return rt.app.Client().ConfirmSettlement(cmd.Context(), args[1], action)
			}),
	)
	return cmd
}

func newRequestCommand(rt *session) *cobra.Command {
	return newParamCommand("request <METHOD> <path>", "发送任意已签名请求", cobra.ExactArgs(2),
		func(cmd *cobra.Command, args []string, params signing.Values) (*tradeblock.Response, error) {
			method, err := tradeblock.ParseMethod(args[0])
			if err != nil {
				return nil, err
			}
			return rt.app.Client().Execute(cmd.Context(), args[1], method, params)
		})
}

func newJournalCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{Use: "journal", Short: "请求审计记录"}

	var filter journal.Filter
	list := &cobra.Command{
		Use:   "list",
		Short: "列出最近的请求记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := rt.app.Journal()
			if svc == nil {
				return fmt.Errorf("审计记录未启用")
			}
			entries, err := svc.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}
	list.Flags().IntVar(&filter.Limit, "limit", 50, "最多返回条数")
	list.Flags().StringVar(&filter.Method, "method", "", "按 HTTP 动词过滤")
	list.Flags().StringVar(&filter.PathPrefix, "path", "", "按路径前缀过滤")
	list.Flags().BoolVar(&filter.FailedOnly, "failed", false, "仅显示网络失败的请求")

	var port int
	serve := &cobra.Command{
		Use:   "serve",
		Short: "启动审计查询 HTTP 接口",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.app.ServeJournal(cmd.Context(), port)
		},
	}
	serve.Flags().IntVar(&port, "port", 0, "监听端口，默认取 journal.port")

	cmd.AddCommand(list, serve)
	return cmd
}
