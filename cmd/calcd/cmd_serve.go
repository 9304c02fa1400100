package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	"calcd/internal/config"
	"calcd/internal/rpc"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	var socketPath string
	var tcpAddr string
	var tcpAllowRemote bool
	var stdio bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the RPC server",
		Long: `Start the RPC server.

By default, the server listens on a unix domain socket and serves one
newline-delimited JSON request per connection. A stale socket file left
behind by a previous run is removed before binding.

Use --tcp to additionally listen on a TCP address (useful for debugging).
TCP defaults to loopback (127.0.0.1) for security. Use --tcp-allow-remote to
bind to all interfaces. Use --stdio to serve a single request over
stdin/stdout instead of listening.

Supported methods:
  floor          Floor of a number
  nroot          N-th root of a number
  reverse        Reverse a string by code points
  valid_anagram  Whether two strings are anagrams
  sort           Sort an array of strings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if socketPath == "" {
				socketPath = cfg.Server.Socket
			}
			if tcpAddr == "" {
				tcpAddr = cfg.Server.TCP
			}

			registry := rpc.NewDefaultRegistry()
			logger := slog.Default()
			server := rpc.NewServer(registry, logger)

			if stdio {
				fmt.Fprintln(os.Stderr, "RPC server running on stdio")
				server.ServeStdio(os.Stdin, os.Stdout)
				return nil
			}

			var group errgroup.Group

			listener, err := rpc.NewUnixListener(socketPath, server)
			if err != nil {
				return fmt.Errorf("failed to start unix socket server: %w", err)
			}
			defer listener.Close() //nolint:errcheck
			fmt.Fprintf(os.Stderr, "RPC server listening on %s\n", listener.Addr())
			group.Go(listener.Serve)

			if tcpAddr != "" {
				tcpAddr = resolveTCPAddr(tcpAddr, tcpAllowRemote, logger)

				tcpListener, err := rpc.NewTCPListener(tcpAddr, server)
				if err != nil {
					return fmt.Errorf("failed to start TCP server: %w", err)
				}
				defer tcpListener.Close() //nolint:errcheck
				fmt.Fprintf(os.Stderr, "RPC server listening on %s\n", tcpListener.Addr())
				group.Go(tcpListener.Serve)
			}

			return group.Wait()
		},
	}

	cmd.Flags().StringVar(&socketPath, "socket", "", "Unix socket path to listen on (default from .calcd.yaml or /tmp/rpc.sock)")
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "TCP address to additionally listen on (e.g., :9000)")
	cmd.Flags().BoolVar(&tcpAllowRemote, "tcp-allow-remote", false,
		"Allow binding to non-loopback addresses (WARNING: exposes the server to the network with no authentication)")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "Serve a single request over stdin/stdout")

	return cmd
}

// resolveTCPAddr ensures TCP addresses default to loopback unless --tcp-allow-remote is set.
func resolveTCPAddr(addr string, allowRemote bool, logger *slog.Logger) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// Likely just a port like "9000"; treat as ":9000".
		host = ""
		port = addr
	}

	if allowRemote {
		logger.Warn("TCP server binding to all interfaces — no authentication is provided",
			"address", addr)
		return addr
	}

	// Default to loopback if no host specified or if 0.0.0.0/:: is used without --tcp-allow-remote.
	if host == "" || host == "0.0.0.0" || host == "::" {
		logger.Info("RPC server listening on TCP (local only)")
		return net.JoinHostPort("127.0.0.1", port)
	}

	return addr
}
