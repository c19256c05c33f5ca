package client_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmora/acp"
	"github.com/dmora/acp/acpschema"
	"github.com/dmora/acp/agentside"
	"github.com/dmora/acp/client"
)

// testHandler records every readTextFile call it receives so assertions
// can inspect call order and arguments.
type testHandler struct {
	client.UnimplementedHandler
	reads []acpschema.ReadTextFileParams
}

func (h *testHandler) ReadTextFile(ctx context.Context, p acpschema.ReadTextFileParams) (acpschema.ReadTextFileResult, error) {
	h.reads = append(h.reads, p)
	return acpschema.ReadTextFileResult{Version: 1, Content: "package main\n"}, nil
}

type agentHandler struct {
	agentside.UnimplementedHandler
}

func (agentHandler) Initialize(ctx context.Context, p acpschema.InitializeParams) (acpschema.InitializeResult, error) {
	return acpschema.InitializeResult{IsAuthenticated: true}, nil
}

func (agentHandler) SendMessage(ctx context.Context, p acpschema.SendMessageParams) (acpschema.SendMessageResult, error) {
	return acpschema.SendMessageResult{}, nil
}

// wirePair builds a connected client.Side/agentside.Side pair over an
// in-process duplex pipe, starts both Run loops, and returns a cleanup.
func wirePair(t *testing.T, ch client.Handler, ah agentside.Handler) (*client.Side, *agentside.Side, func()) {
	t.Helper()
	cr, sw := io.Pipe() // client reads what the agent writes
	sr, cw := io.Pipe() // agent reads what the client writes

	c := client.New(cr, cw, ch)
	a := agentside.New(sr, sw, ah)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{}, 2)
	go func() { _ = c.Run(ctx); done <- struct{}{} }()
	go func() { _ = a.Run(ctx); done <- struct{}{} }()

	cleanup := func() {
		cancel()
		cr.Close()
		cw.Close()
		sr.Close()
		sw.Close()
	}
	return c, a, cleanup
}

func TestInitializeRoundTrip(t *testing.T) {
	h := &testHandler{}
	c, _, cleanup := wirePair(t, h, agentHandler{})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := c.Initialize(ctx, acpschema.InitializeParams{ProtocolVersion: 1})
	require.NoError(t, err)
	assert.True(t, res.IsAuthenticated)
}

func TestAgentCallsBackIntoClient(t *testing.T) {
	h := &testHandler{}
	_, a, cleanup := wirePair(t, h, agentHandler{})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := a.ReadTextFile(ctx, acpschema.ReadTextFileParams{ThreadID: "t1", Path: "main.go"})
	require.NoError(t, err)
	assert.Equal(t, "package main\n", res.Content)
	require.Len(t, h.reads, 1)
	assert.Equal(t, acpschema.ThreadID("t1"), h.reads[0].ThreadID)
}

func TestUnimplementedHandlerSurfacesError(t *testing.T) {
	h := &testHandler{}
	c, _, cleanup := wirePair(t, h, agentHandler{})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// GetThreads is not overridden by agentHandler, so it falls through to
	// agentside.UnimplementedHandler and must surface as a wire error.
	_, err := c.GetThreads(ctx)
	require.Error(t, err)
	var wireErr *acp.Error
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, acp.ErrCodeInternal, wireErr.Code)
}
