package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"calcd/internal/config"
	"calcd/internal/rpc"
	"github.com/spf13/cobra"
)

func newCallCommand() *cobra.Command {
	var socketPath string
	var tcpAddr string
	var id uint64

	cmd := &cobra.Command{
		Use:   "call <method> [arg...]",
		Short: "Call a method on a running RPC server",
		Long: `Call a method on a running RPC server and print the result.

Each positional argument is parsed as a JSON value; arguments that are not
valid JSON are sent as strings. The arguments form the positional params
array of the request.

Examples:
  calcd call floor 3.7
  calcd call nroot 2 16
  calcd call reverse hello
  calcd call valid_anagram listen silent
  calcd call sort '["banana","apple","cherry"]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if socketPath == "" {
				socketPath = cfg.Server.Socket
			}

			client := rpc.NewUnixClient(socketPath)
			if tcpAddr != "" {
				client = rpc.NewTCPClient(tcpAddr)
			}

			params := make([]any, 0, len(args)-1)
			for _, arg := range args[1:] {
				var v any
				if err := json.Unmarshal([]byte(arg), &v); err != nil {
					// Not valid JSON; send it as a string.
					params = append(params, arg)
					continue
				}
				params = append(params, v)
			}

			resp, errResp, err := client.Call(args[0], params, id)
			if err != nil {
				return err
			}
			if errResp != nil {
				return &RPCError{Code: errResp.Err.Code, Message: errResp.Err.Message}
			}

			slog.Debug("response received", "result_type", resp.ResultType, "id", resp.ID)
			fmt.Fprintln(cmd.OutOrStdout(), resp.Result)
			return nil
		},
	}

	cmd.Flags().StringVar(&socketPath, "socket", "", "Unix socket path of the server (default from .calcd.yaml or /tmp/rpc.sock)")
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "TCP address of the server instead of a unix socket")
	cmd.Flags().Uint64Var(&id, "id", 1, "Request id")

	return cmd
}
