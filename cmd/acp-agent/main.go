// Command acp-agent is a reference ACP agent: it serves the agent method
// catalog over stdio (or a WebSocket) backed by an in-memory thread store,
// demonstrating the protocol engine end to end.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmora/acp/agentside"
	"github.com/dmora/acp/internal/config"
	"github.com/dmora/acp/internal/demoagent"
	"github.com/dmora/acp/transport/acpws"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "acp-agent",
	Short: "Reference ACP agent backed by an in-memory thread store",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent method catalog until the peer disconnects",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "acp-agent.yaml", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.LogLevel))
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	switch cfg.Transport {
	case config.TransportStdio:
		agent := demoagent.New()
		side := agentside.New(os.Stdin, os.Stdout, agent)
		agent.Attach(side)
		logger.Info("acp-agent serving over stdio")
		return side.Run(cmd.Context())

	case config.TransportWS:
		if cfg.ListenAddr == "" {
			return fmt.Errorf("acp-agent: listenAddr required for websocket transport")
		}
		return serveWS(cmd.Context(), cfg.ListenAddr, logger)

	default:
		return fmt.Errorf("acp-agent: unknown transport %q", cfg.Transport)
	}
}

// serveWS accepts WebSocket connections, constructing a fresh demoagent.Agent
// per connection (one state-holder per session, mirroring the teacher
// engine's one-process-per-session model) so concurrent clients never share
// thread state or race each other's Attach call.
func serveWS(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/acp", func(w http.ResponseWriter, r *http.Request) {
		conn, err := acpws.Accept(w, r, nil)
		if err != nil {
			logger.Error("websocket accept failed", "err", err)
			return
		}
		defer conn.Close()

		agent := demoagent.New()
		side := agentside.New(conn, conn, agent)
		agent.Attach(side)
		if err := side.Run(r.Context()); err != nil {
			logger.Warn("connection ended", "err", err)
		}
	})

	logger.Info("acp-agent serving over websocket", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return srv.ListenAndServe()
}
