package acp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmora/acp"
)

// pingParams/pingResult and echoRegistry give the low-level engine tests a
// minimal, self-contained method catalog so they exercise [acp.Conn]
// directly without depending on package acpschema.

type pingParams struct {
	N int `json:"n"`
}

func (pingParams) Method() string { return "ping" }

type pingResult struct {
	N int `json:"n"`
}

func (pingResult) Method() string { return "ping" }

type echoRegistry struct{}

func (echoRegistry) DecodeRequest(method string, raw json.RawMessage) (acp.AnyRequest, error) {
	if method != "ping" {
		return nil, acp.ErrUnknownMethod
	}
	var p pingParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (echoRegistry) DecodeResponse(method string, raw json.RawMessage) (acp.AnyResponse, error) {
	if method != "ping" {
		return nil, acp.ErrUnknownMethod
	}
	var r pingResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func (echoRegistry) Methods() []acp.MethodDescriptor {
	return []acp.MethodDescriptor{{Name: "ping", RequestType: "pingParams", ResponseType: "pingResult"}}
}

// recordingWriter captures every write alongside forwarding it, so a test
// can inspect the exact bytes that hit the wire without racing the reader
// side of an io.Pipe.
type recordingWriter struct {
	mu    sync.Mutex
	inner io.Writer
	lines [][]byte
	buf   bytes.Buffer
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.buf.Write(p)
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := append([]byte(nil), w.buf.Bytes()[:idx]...)
		w.lines = append(w.lines, line)
		w.buf.Next(idx + 1)
	}
	w.mu.Unlock()
	return w.inner.Write(p)
}

func (w *recordingWriter) Lines() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]byte(nil), w.lines...)
}

func echoHandler(ctx context.Context, req acp.AnyRequest) (acp.AnyResponse, *acp.Error) {
	p := req.(pingParams)
	return pingResult{N: p.N}, nil
}

func newPair(t *testing.T) (clientConn *acp.Conn, rec *recordingWriter, cleanup func()) {
	t.Helper()
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()

	rec = &recordingWriter{inner: cw}
	clientConn = acp.NewConn(cr, rec, echoRegistry{}, echoRegistry{}, nil)
	serverConn := acp.NewConn(sr, sw, echoRegistry{}, echoRegistry{}, echoHandler)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = clientConn.Run(ctx) }()
	go func() { _ = serverConn.Run(ctx) }()

	return clientConn, rec, func() {
		cancel()
		cr.Close()
		cw.Close()
		sr.Close()
		sw.Close()
	}
}

func TestRequestIDsStrictlyIncreasing(t *testing.T) {
	conn, rec, cleanup := newPair(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	for i := 0; i < 5; i++ {
		_, err := acp.Call[pingResult](ctx, conn, pingParams{N: i})
		require.NoError(t, err)
	}

	var ids []int
	for _, line := range rec.Lines() {
		var env struct {
			ID *int `json:"id"`
		}
		require.NoError(t, json.Unmarshal(line, &env))
		require.NotNil(t, env.ID)
		ids = append(ids, *env.ID)
	}
	require.Len(t, ids, 5)
	for i, id := range ids {
		assert.Equal(t, i, id)
	}
}

func TestConcurrentRequestsResolveExactlyOnce(t *testing.T) {
	conn, _, cleanup := newPair(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const n = 50
	var wg sync.WaitGroup
	results := make([]int, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := acp.Call[pingResult](ctx, conn, pingParams{N: i})
			results[i] = res.N
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, i, results[i])
	}
}

func TestConcurrentRequestsProduceCleanFrames(t *testing.T) {
	conn, rec, cleanup := newPair(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := acp.Call[pingResult](ctx, conn, pingParams{N: i})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	lines := rec.Lines()
	require.Len(t, lines, n)
	for _, line := range lines {
		var v map[string]any
		assert.NoError(t, json.Unmarshal(line, &v), "line must be exactly one JSON object: %s", line)
	}
}

func TestMalformedFrameIsSkippedNotFatal(t *testing.T) {
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	defer cr.Close()
	defer sw.Close()
	defer sr.Close()
	defer cw.Close()

	var badLines [][]byte
	var mu sync.Mutex
	conn := acp.NewConn(cr, cw, echoRegistry{}, echoRegistry{}, nil, acp.WithOnFrameError(func(line []byte, err error) {
		mu.Lock()
		badLines = append(badLines, append([]byte(nil), line...))
		mu.Unlock()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = conn.Run(ctx) }()

	go func() {
		_, _ = io.WriteString(sw, "not json at all\n")
		_, _ = io.WriteString(sw, `{"id":0,"result":{"n":7}}`+"\n")
	}()

	// Drive a request so there's a pending entry id 0 to resolve once the
	// malformed line has been skipped.
	reqCtx, reqCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer reqCancel()

	// Consume the client's own outgoing ping line so the pipe doesn't
	// deadlock; the server side above plays the role of a hand-scripted
	// peer instead of a real acp.Conn.
	go io.Copy(io.Discard, sr)

	res, err := acp.Call[pingResult](reqCtx, conn, pingParams{N: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, res.N)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, badLines, 1)
	assert.True(t, strings.Contains(string(badLines[0]), "not json"))
}

func TestUnknownMethodSurfacesAsWireError(t *testing.T) {
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	defer cr.Close()
	defer sw.Close()
	defer sr.Close()
	defer cw.Close()

	conn := acp.NewConn(cr, cw, echoRegistry{}, emptyRegistry{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = conn.Run(ctx) }()

	go func() {
		_, _ = io.WriteString(sw, `{"id":0,"method":"ping","params":{"n":1}}`+"\n")
	}()

	// The client conn's recvRegistry (emptyRegistry) has no "ping" entry,
	// so it must answer the server with an error envelope instead of
	// dying; drain that response off the wire to prove the connection
	// stayed alive.
	line := readLine(t, sr)
	var env struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(line, &env))
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "ping")
}

type emptyRegistry struct{}

func (emptyRegistry) DecodeRequest(method string, raw json.RawMessage) (acp.AnyRequest, error) {
	return nil, acp.ErrUnknownMethod
}
func (emptyRegistry) DecodeResponse(method string, raw json.RawMessage) (acp.AnyResponse, error) {
	return nil, acp.ErrUnknownMethod
}
func (emptyRegistry) Methods() []acp.MethodDescriptor { return nil }

func readLine(t *testing.T, r io.Reader) []byte {
	t.Helper()
	buf := make([]byte, 0, 256)
	one := make([]byte, 1)
	for {
		n, err := r.Read(one)
		require.NoError(t, err)
		if n == 0 {
			continue
		}
		if one[0] == '\n' {
			return buf
		}
		buf = append(buf, one[0])
	}
}
