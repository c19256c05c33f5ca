package agentside_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmora/acp"
	"github.com/dmora/acp/acpschema"
	"github.com/dmora/acp/agentside"
	"github.com/dmora/acp/client"
)

type echoClientHandler struct {
	client.UnimplementedHandler

	mu     sync.Mutex
	chunks []string
}

func (h *echoClientHandler) StreamMessageChunk(ctx context.Context, p acpschema.StreamMessageChunkParams) (acpschema.StreamMessageChunkResult, error) {
	h.mu.Lock()
	h.chunks = append(h.chunks, p.Chunk.Text)
	h.mu.Unlock()
	return acpschema.StreamMessageChunkResult{}, nil
}

type echoAgentHandler struct {
	agentside.UnimplementedHandler
}

func (echoAgentHandler) SendMessage(ctx context.Context, p acpschema.SendMessageParams) (acpschema.SendMessageResult, error) {
	return acpschema.SendMessageResult{}, nil
}

func (echoAgentHandler) CreateThread(ctx context.Context, p acpschema.CreateThreadParams) (acpschema.CreateThreadResult, error) {
	return acpschema.CreateThreadResult{ThreadID: "new-thread"}, nil
}

func wirePair(t *testing.T, ch client.Handler, ah agentside.Handler) (*client.Side, *agentside.Side, func()) {
	t.Helper()
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()

	c := client.New(cr, cw, ch)
	a := agentside.New(sr, sw, ah)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Run(ctx) }()
	go func() { _ = a.Run(ctx) }()

	return c, a, func() {
		cancel()
		cr.Close()
		cw.Close()
		sr.Close()
		sw.Close()
	}
}

func TestBidirectionalInterleave(t *testing.T) {
	ch := &echoClientHandler{}
	c, a, cleanup := wirePair(t, ch, echoAgentHandler{})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	var clientErr, agentErr error
	go func() {
		defer wg.Done()
		_, clientErr = c.SendMessage(ctx, acpschema.SendMessageParams{
			ThreadID: "t1",
			Message:  acpschema.Message{Role: acpschema.RoleUser, Chunks: []acpschema.MessageChunk{acpschema.TextChunk("hello")}},
		})
	}()
	go func() {
		defer wg.Done()
		_, agentErr = a.StreamMessageChunk(ctx, acpschema.StreamMessageChunkParams{
			ThreadID: "t1",
			Chunk:    acpschema.TextChunk("partial reply"),
		})
	}()
	wg.Wait()

	require.NoError(t, clientErr)
	require.NoError(t, agentErr)

	ch.mu.Lock()
	defer ch.mu.Unlock()
	assert.Equal(t, []string{"partial reply"}, ch.chunks)
}

func TestErrorPropagation(t *testing.T) {
	ch := &echoClientHandler{}
	c, _, cleanup := wirePair(t, ch, echoAgentHandler{})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// OpenThread is not overridden by echoAgentHandler, so it falls
	// through to UnimplementedHandler and returns a wire error.
	_, err := c.OpenThread(ctx, acpschema.OpenThreadParams{ThreadID: "missing"})
	require.Error(t, err)
	var wireErr *acp.Error
	require.ErrorAs(t, err, &wireErr)
	assert.Contains(t, wireErr.Message, "openThread")
}

func TestShutdownDrainsPendingRequests(t *testing.T) {
	ch := &echoClientHandler{}
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()

	c := client.New(cr, cw, ch)
	_ = agentside.New(sr, sw, echoAgentHandler{}) // never run: peer never responds

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx) }()

	reqDone := make(chan error, 1)
	go func() {
		_, err := c.GetThreads(context.Background())
		reqDone <- err
	}()

	// Give the request time to reach the pending table, then tear down the
	// connection without the peer ever answering.
	time.Sleep(50 * time.Millisecond)
	cancel()
	cr.Close()
	cw.Close()
	sr.Close()
	sw.Close()

	select {
	case err := <-reqDone:
		require.Error(t, err)
		assert.ErrorIs(t, err, acp.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("pending request was not drained on shutdown")
	}

	<-runDone
}
