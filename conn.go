package acp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dmora/acp/internal/wireutil"
)

// HandlerFunc processes one inbound request, decoded against the
// connection's receive-side [Registry], and returns the typed response (or
// a wire [Error]) to send back. It runs on the handler pump, never
// concurrently with another HandlerFunc invocation from the same Conn
// unless the handler itself spawns work (spec §4.4).
type HandlerFunc func(ctx context.Context, req AnyRequest) (AnyResponse, *Error)

// pendingEntry is an in-flight local Request awaiting a response (spec §3
// "Pending entry").
type pendingEntry struct {
	method string
	ch     chan pendingResult
}

// pendingResult is what arrives on a pendingEntry's channel: either the
// raw (not yet decoded) result payload or a wire error, never both.
type pendingResult struct {
	raw    json.RawMessage
	rpcErr *wireError
}

// handlerJob is one inbound request queued for the handler pump.
type handlerJob struct {
	id     ID
	method string
	req    AnyRequest
}

// Options configures a [Conn].
type Options struct {
	MaxFrameSize   int
	HandlerQueue   int
	OutgoingBuffer int
	Logger         *slog.Logger
	OnFrameError   func(line []byte, err error)
	MethodAliases  map[string]string // legacy wire name -> canonical name, decode-only
}

// Option configures [Options].
type Option func(*Options)

// WithMaxFrameSize overrides the maximum accepted line size. See
// [DefaultMaxFrameSize].
func WithMaxFrameSize(n int) Option { return func(o *Options) { o.MaxFrameSize = n } }

// WithLogger installs a logger for internal connection diagnostics
// (malformed frames, unknown methods, unknown response ids). Defaults to
// slog.Default() — matching the reference agent-client-protocol Go
// connection's loggerOrDefault pattern.
func WithLogger(l *slog.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithOnFrameError installs a callback invoked whenever an inbound line
// fails to parse as an envelope. The frame is always skipped; this is
// purely observational.
func WithOnFrameError(f func(line []byte, err error)) Option {
	return func(o *Options) { o.OnFrameError = f }
}

// WithMethodAliases lets the decoder accept legacy wire method names,
// mapping them to a canonical registered name before registry lookup. Use
// this to resolve schema drift (spec §9) without widening the registry's
// closed sum — e.g. {"streamAssistantMessageChunk": "streamMessageChunk"}.
func WithMethodAliases(aliases map[string]string) Option {
	return func(o *Options) { o.MethodAliases = aliases }
}

func resolveOptions(opts ...Option) Options {
	o := Options{
		MaxFrameSize:   DefaultMaxFrameSize,
		HandlerQueue:   256,
		OutgoingBuffer: 256,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Conn is the ACP connection engine (spec §4.4): it frames and multiplexes
// a duplex byte pair, routing outgoing requests to their responses via a
// monotonic id and dispatching incoming requests to a [HandlerFunc].
//
// A Conn is parameterized by two [Registry] values: sendRegistry decodes
// responses to locally-issued requests (the registry of the role this
// endpoint *calls*), recvRegistry decodes incoming requests (the registry
// of the role this endpoint *implements*). The same Conn type runs on both
// ends of a connection; only the registries and handler differ — this is
// the "symmetric engine, asymmetric roles" design from spec §9.
type Conn struct {
	scanner *FrameScanner
	writer  *FrameWriter

	sendRegistry Registry
	recvRegistry Registry
	handler      HandlerFunc

	opts Options

	nextID  atomic.Int32
	mu      sync.Mutex
	pending map[ID]pendingEntry

	outgoing chan []byte
	handlers chan handlerJob

	done     chan struct{}
	doneOnce sync.Once
	runErr   atomic.Pointer[error]
}

// NewConn constructs a Conn. Run must be called (typically in its own
// goroutine) before Request can complete or inbound requests are handled.
func NewConn(r io.Reader, w io.Writer, sendRegistry, recvRegistry Registry, handler HandlerFunc, opts ...Option) *Conn {
	o := resolveOptions(opts...)
	if handler == nil {
		handler = func(context.Context, AnyRequest) (AnyResponse, *Error) {
			return nil, &Error{Code: ErrCodeInternal, Message: "no handler installed"}
		}
	}
	return &Conn{
		scanner:      NewFrameScanner(r, o.MaxFrameSize),
		writer:       NewFrameWriter(w),
		sendRegistry: sendRegistry,
		recvRegistry: recvRegistry,
		handler:      handler,
		opts:         o,
		pending:      make(map[ID]pendingEntry),
		outgoing:     make(chan []byte, o.OutgoingBuffer),
		handlers:     make(chan handlerJob, o.HandlerQueue),
		done:         make(chan struct{}),
	}
}

func (c *Conn) logger() *slog.Logger { return c.opts.Logger }

// Request sends req (whose Method() names an entry in sendRegistry) and
// blocks until the response arrives, ctx is done, or the connection closes.
// It never blocks the caller beyond enqueuing onto the outgoing channel
// before that point (spec §4.4).
func (c *Conn) Request(ctx context.Context, req AnyRequest) (AnyResponse, error) {
	method := req.Method()
	id := ID(c.nextID.Add(1) - 1)

	entry := pendingEntry{method: method, ch: make(chan pendingResult, 1)}
	c.mu.Lock()
	c.pending[id] = entry
	c.mu.Unlock()

	line, err := encodeRequest(id, method, req)
	if err != nil {
		c.dropPending(id)
		return nil, fmt.Errorf("acp: encode %s: %w", method, err)
	}

	select {
	case c.outgoing <- line:
	case <-c.done:
		c.dropPending(id)
		return nil, fmt.Errorf("acp: send %s: %w", method, ErrClosed)
	case <-ctx.Done():
		c.dropPending(id)
		return nil, ctx.Err()
	}

	select {
	case res, ok := <-entry.ch:
		return c.resolveResult(method, res, ok)
	case <-ctx.Done():
		c.dropPending(id)
		// A response may have landed between the first select firing and
		// the delete above taking effect; drain once so a just-arrived
		// success isn't discarded in favor of a context error (mirrors
		// the teacher engine's Call: "drain ch to avoid discarding a
		// successful result").
		select {
		case res, ok := <-entry.ch:
			return c.resolveResult(method, res, ok)
		default:
			return nil, ctx.Err()
		}
	case <-c.done:
		return nil, fmt.Errorf("acp: %s: %w", method, ErrClosed)
	}
}

func (c *Conn) dropPending(id ID) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Conn) resolveResult(method string, res pendingResult, ok bool) (AnyResponse, error) {
	if !ok {
		return nil, fmt.Errorf("acp: %s: %w", method, ErrClosed)
	}
	if res.rpcErr != nil {
		return nil, &Error{Code: res.rpcErr.Code, Message: res.rpcErr.Message}
	}
	resp, err := c.sendRegistry.DecodeResponse(method, res.raw)
	if err != nil {
		return nil, fmt.Errorf("acp: decode %s result: %w", method, err)
	}
	return resp, nil
}

// Notify is reserved for future notification support; ACP per spec §1/§9
// has none today, but the wire shape (no id) is representable — unused
// until a method needs it, so it is intentionally omitted from the public
// API (YAGNI): see DESIGN.md.

// Run drives the connection until ctx is cancelled, the peer reaches EOF,
// or an unrecoverable I/O error occurs, then drains pending requests with
// [ErrClosed] (spec §4.4 "Shutdown drains pending"). It launches the read
// feeder, the I/O pump, and the handler pump under one [errgroup.Group]:
// when either pump ends, the other is stopped. The read feeder blocks in a
// read of the underlying reader and is not interrupted; Run returns, and
// pending requests are drained, only once that read returns (EOF, an
// error, or the next line).
func (c *Conn) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	readErrCh := make(chan error, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.readFeeder(lines, readErrCh)
		return nil
	})
	g.Go(func() error {
		// The pump also ends cleanly (nil) on peer EOF; cancel so the
		// handler pump stops too and Run can drain pending requests.
		err := c.pump(gctx, lines)
		cancel()
		return err
	})
	g.Go(func() error {
		return c.handlerPump(gctx)
	})

	err := g.Wait()
	c.shutdown()

	select {
	case rerr := <-readErrCh:
		if rerr != nil {
			err = rerr
		}
	default:
	}
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// readFeeder blocks on FrameScanner.Scan (genuinely blocking I/O) and
// forwards each line to lines, so the select-based pump in [Conn.pump] can
// treat "a line is available" as just another channel case. Closes lines
// on EOF or when the connection is shut down.
func (c *Conn) readFeeder(lines chan<- []byte, errCh chan<- error) {
	defer close(lines)
	for c.scanner.Scan() {
		line := append([]byte(nil), c.scanner.Bytes()...)
		select {
		case lines <- line:
		case <-c.done:
			return
		}
	}
	if err := c.scanner.Err(); err != nil {
		errCh <- err
	}
}

// pump is the I/O pump (spec §4.4): on each iteration it prefers sending a
// queued outgoing frame over processing one inbound line. Go's select has
// no native priority among ready cases, so the bias is implemented as a
// non-blocking drain pass before the real blocking select — see
// DESIGN.md for why this, rather than a single select, is the correct
// translation of "biased select" into Go.
func (c *Conn) pump(ctx context.Context, lines <-chan []byte) error {
	for {
		select {
		case out, ok := <-c.outgoing:
			if ok {
				if err := c.writer.WriteFrame(out); err != nil {
					return fmt.Errorf("acp: write: %w", err)
				}
			}
			continue
		default:
		}

		select {
		case out := <-c.outgoing:
			if err := c.writer.WriteFrame(out); err != nil {
				return fmt.Errorf("acp: write: %w", err)
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			c.handleLine(ctx, line)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handleLine parses and routes one inbound line (spec §4.2, §4.4).
func (c *Conn) handleLine(ctx context.Context, line []byte) {
	env, err := parseEnvelope(line)
	if err != nil {
		if c.opts.OnFrameError != nil {
			c.opts.OnFrameError(line, err)
		}
		c.logger().Error("acp: malformed frame", "err", err, "raw", wireutil.Truncate(string(line)))
		return
	}

	switch env.kind {
	case KindRequest:
		c.handleRequest(ctx, env)
	case KindSuccess, KindError:
		c.handleResponse(env)
	}
}

func (c *Conn) handleRequest(ctx context.Context, env *envelope) {
	method := env.method
	if canon, ok := c.opts.MethodAliases[method]; ok {
		method = canon
	}

	req, err := c.recvRegistry.DecodeRequest(method, env.params)
	if err != nil {
		c.logger().Warn("acp: request decode failed", "method", wireutil.SanitizeIdent(method), "id", wireutil.SanitizeIdent(strconv.Itoa(int(env.id))), "err", err)
		if env.hasID {
			c.enqueueError(env.id, ErrCodeInternal, fmt.Sprintf("decode %s: %v", method, err))
		}
		return
	}

	job := handlerJob{id: env.id, method: method, req: req}
	select {
	case c.handlers <- job:
	case <-ctx.Done():
	case <-c.done:
	}
}

func (c *Conn) handleResponse(env *envelope) {
	c.mu.Lock()
	entry, ok := c.pending[env.id]
	if ok {
		delete(c.pending, env.id)
	}
	c.mu.Unlock()

	if !ok {
		// Unknown response id: logged and dropped (spec §3 invariants, §7).
		c.logger().Warn("acp: response for unknown id", "id", wireutil.SanitizeIdent(strconv.Itoa(int(env.id))))
		return
	}

	res := pendingResult{raw: env.result, rpcErr: env.rpcErr}
	entry.ch <- res
}

// handlerPump consumes inbound requests FIFO (spec §4.4 "Handler pump").
func (c *Conn) handlerPump(ctx context.Context) error {
	for {
		select {
		case job, ok := <-c.handlers:
			if !ok {
				return nil
			}
			c.runHandlerJob(ctx, job)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Conn) runHandlerJob(ctx context.Context, job handlerJob) {
	resp, herr := c.handler(ctx, job.req)
	if herr != nil {
		c.enqueueError(job.id, herr.Code, herr.Message)
		return
	}
	line, err := encodeSuccess(job.id, resp)
	if err != nil {
		c.enqueueError(job.id, ErrCodeInternal, fmt.Sprintf("marshal %s result: %v", job.method, err))
		return
	}
	c.enqueueLine(line)
}

func (c *Conn) enqueueError(id ID, code int, message string) {
	line, err := encodeError(id, code, message)
	if err != nil {
		c.logger().Error("acp: failed to encode error response", "err", err)
		return
	}
	c.enqueueLine(line)
}

// enqueueLine queues a response frame, best-effort: the connection may
// already be shutting down, in which case the peer will simply time out
// (matching the teacher engine's sendResult/sendError rationale).
func (c *Conn) enqueueLine(line []byte) {
	select {
	case c.outgoing <- line:
	case <-c.done:
	}
}

// shutdown closes done and resolves every pending request with
// [ErrClosed] (spec §4.4 "Shutdown drains pending entries").
func (c *Conn) shutdown() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[ID]pendingEntry)
	c.mu.Unlock()
	for _, entry := range pending {
		close(entry.ch)
	}
}

// Call is a generic helper lifting a typed request into [Conn.Request] and
// projecting the decoded [AnyResponse] back to its expected concrete type
// R (spec §4.5's "lifts R into its any-request sum ... projects back to
// R::Response"). A decoded response of any other concrete type is reported
// as [ErrResponseShapeMismatch] — a protocol violation that never touches
// the wire.
func Call[R any](ctx context.Context, c *Conn, req AnyRequest) (R, error) {
	var zero R
	resAny, err := c.Request(ctx, req)
	if err != nil {
		return zero, err
	}
	resp, ok := resAny.(R)
	if !ok {
		return zero, fmt.Errorf("acp: %s: %w", req.Method(), ErrResponseShapeMismatch)
	}
	return resp, nil
}
