package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"

	"tradeblock/internal/signing"
	"tradeblock/internal/tradeblock"
)

// parseParams 将 key=value 列表转换为请求参数，重复的键合并为数组。
func parseParams(raw []string) (signing.Values, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	values := signing.Values{}
	for _, item := range raw {
		key, value, ok := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("参数格式应为 key=value: %q", item)
		}

		switch existing := values[key].(type) {
		case nil:
			values[key] = value
		case string:
			values[key] = []string{existing, value}
		case []string:
			values[key] = append(existing, value)
		}
	}
	return values, nil
}

func addParamsFlag(cmd *cobra.Command, target *[]string) {
	cmd.Flags().StringArrayVarP(target, "param", "p", nil, "请求参数 key=value，可重复")
}

// printResponse 将状态行输出到 stderr，响应体输出到 stdout。
func printResponse(cmd *cobra.Command, resp *tradeblock.Response) error {
	status := fmt.Sprintf("HTTP %d", resp.StatusCode)
	if resp.OK() {
		fmt.Fprintln(cmd.ErrOrStderr(), aurora.Green(status))
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), aurora.Bold(aurora.Red(status)))
	}
	return writeBody(cmd.OutOrStdout(), resp.Body)
}

func printResponses(cmd *cobra.Command, responses []*tradeblock.Response) error {
	for _, resp := range responses {
		if err := printResponse(cmd, resp); err != nil {
			return err
		}
	}
	return nil
}

func writeBody(w io.Writer, body []byte) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, bytes.TrimSpace(body), "", "  "); err != nil {
		_, werr := fmt.Fprintln(w, string(body))
		return werr
	}
	pretty.WriteByte('\n')
	_, err := w.Write(pretty.Bytes())
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
