// Command acp-client is a reference ACP client: it spawns (or dials) an
// agent, performs the initialize handshake, creates a thread, sends one
// message, and prints whatever the agent streams back.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmora/acp/acpschema"
	"github.com/dmora/acp/client"
	"github.com/dmora/acp/internal/config"
	"github.com/dmora/acp/transport/acpstdio"
	"github.com/dmora/acp/transport/acpws"
)

var configPath string
var message string

var rootCmd = &cobra.Command{
	Use:   "acp-client",
	Short: "Reference ACP client",
}

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Connect to an agent, send one message, and print its reply",
	RunE:  runCall,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "acp-client.yaml", "path to YAML config file")
	callCmd.Flags().StringVar(&message, "message", "hello", "message text to send")
	rootCmd.AddCommand(callCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// printingHandler renders streamed chunks to stdout and signals done on
// endTurn, so the call subcommand knows when the agent has finished.
type printingHandler struct {
	client.UnimplementedHandler
	done chan struct{}
}

func (h *printingHandler) StreamMessageChunk(ctx context.Context, p acpschema.StreamMessageChunkParams) (acpschema.StreamMessageChunkResult, error) {
	fmt.Println(p.Chunk.Text)
	return acpschema.StreamMessageChunkResult{}, nil
}

func (h *printingHandler) EndTurn(ctx context.Context, p acpschema.EndTurnParams) (acpschema.EndTurnResult, error) {
	close(h.done)
	return acpschema.EndTurnResult{}, nil
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.LogLevel))
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	handler := &printingHandler{done: make(chan struct{})}

	ctx := cmd.Context()
	var side *client.Side
	var teardown func()

	switch cfg.Transport {
	case config.TransportStdio:
		if cfg.Binary == "" {
			return fmt.Errorf("acp-client: binary required for stdio transport")
		}
		sp, err := acpstdio.Spawn(ctx, cfg.Binary, cfg.Args, "")
		if err != nil {
			return err
		}
		side = client.New(sp.Reader(), sp.Writer(), handler)
		teardown = func() { _ = sp.Wait() }

	case config.TransportWS:
		if cfg.WebSocketURL == "" {
			return fmt.Errorf("acp-client: webSocketUrl required for websocket transport")
		}
		conn, err := acpws.Dial(ctx, cfg.WebSocketURL, nil)
		if err != nil {
			return err
		}
		side = client.New(conn, conn, handler)
		teardown = func() { _ = conn.Close() }

	default:
		return fmt.Errorf("acp-client: unknown transport %q", cfg.Transport)
	}
	defer teardown()

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- side.Run(ctx) }()

	hsCtx, hsCancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
	defer hsCancel()

	initRes, err := side.Initialize(hsCtx, acpschema.InitializeParams{
		ProtocolVersion: 1,
		ClientInfo:      &acpschema.Implementation{Name: "acp-client", Version: "0.1.0"},
	})
	if err != nil {
		return fmt.Errorf("acp-client: initialize: %w", err)
	}
	logger.Info("handshake complete", "isAuthenticated", initRes.IsAuthenticated)

	created, err := side.CreateThread(ctx)
	if err != nil {
		return fmt.Errorf("acp-client: createThread: %w", err)
	}

	_, err = side.SendMessage(ctx, acpschema.SendMessageParams{
		ThreadID: created.ThreadID,
		Message: acpschema.Message{
			Role:   acpschema.RoleUser,
			Chunks: []acpschema.MessageChunk{acpschema.TextChunk(strings.TrimSpace(message))},
		},
	})
	if err != nil {
		return fmt.Errorf("acp-client: sendMessage: %w", err)
	}

	select {
	case <-handler.done:
	case <-time.After(30 * time.Second):
		return fmt.Errorf("acp-client: timed out waiting for endTurn")
	case err := <-runErrCh:
		if err != nil {
			return err
		}
	}

	return nil
}
