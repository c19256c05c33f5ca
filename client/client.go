// Package client implements the client side of an ACP connection: the
// typed facade for calling agent methods (initialize, getThreads,
// sendMessage, ...) and the [Handler] contract for serving the client
// methods an agent calls back (streamMessageChunk, readTextFile,
// requestToolCallConfirmation, ...).
//
// This mirrors the teacher engine's split between a thin typed facade and
// the untyped [acp.Conn] underneath (engine/acp/process.go's Session
// wrapping Conn), generalized from one hardcoded backend protocol to the
// full ACP method catalog in package acpschema.
package client

import (
	"context"
	"io"

	"github.com/dmora/acp"
	"github.com/dmora/acp/acpschema"
)

// Handler serves the client methods an agent calls on this side of the
// connection (spec §6 "Client methods (agent-initiated)"). Implement this
// to back a real ACP client; embed [UnimplementedHandler] to only
// implement the methods your client actually supports.
type Handler interface {
	StreamMessageChunk(ctx context.Context, p acpschema.StreamMessageChunkParams) (acpschema.StreamMessageChunkResult, error)
	ReadTextFile(ctx context.Context, p acpschema.ReadTextFileParams) (acpschema.ReadTextFileResult, error)
	ReadBinaryFile(ctx context.Context, p acpschema.ReadBinaryFileParams) (acpschema.ReadBinaryFileResult, error)
	Stat(ctx context.Context, p acpschema.StatParams) (acpschema.StatResult, error)
	GlobSearch(ctx context.Context, p acpschema.GlobSearchParams) (acpschema.GlobSearchResult, error)
	RequestToolCallConfirmation(ctx context.Context, p acpschema.RequestToolCallConfirmationParams) (acpschema.RequestToolCallConfirmationResult, error)
	PushToolCall(ctx context.Context, p acpschema.PushToolCallParams) (acpschema.PushToolCallResult, error)
	UpdateToolCall(ctx context.Context, p acpschema.UpdateToolCallParams) (acpschema.UpdateToolCallResult, error)
	EndTurn(ctx context.Context, p acpschema.EndTurnParams) (acpschema.EndTurnResult, error)
}

// UnimplementedHandler answers every client method with an error,
// matching acpschema.MethodX's name in the message. Embed it in a Handler
// implementation to pick and choose which methods to override.
type UnimplementedHandler struct{}

func (UnimplementedHandler) StreamMessageChunk(context.Context, acpschema.StreamMessageChunkParams) (acpschema.StreamMessageChunkResult, error) {
	return acpschema.StreamMessageChunkResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodStreamMessageChunk))
}
func (UnimplementedHandler) ReadTextFile(context.Context, acpschema.ReadTextFileParams) (acpschema.ReadTextFileResult, error) {
	return acpschema.ReadTextFileResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodReadTextFile))
}
func (UnimplementedHandler) ReadBinaryFile(context.Context, acpschema.ReadBinaryFileParams) (acpschema.ReadBinaryFileResult, error) {
	return acpschema.ReadBinaryFileResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodReadBinaryFile))
}
func (UnimplementedHandler) Stat(context.Context, acpschema.StatParams) (acpschema.StatResult, error) {
	return acpschema.StatResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodStat))
}
func (UnimplementedHandler) GlobSearch(context.Context, acpschema.GlobSearchParams) (acpschema.GlobSearchResult, error) {
	return acpschema.GlobSearchResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodGlobSearch))
}
func (UnimplementedHandler) RequestToolCallConfirmation(context.Context, acpschema.RequestToolCallConfirmationParams) (acpschema.RequestToolCallConfirmationResult, error) {
	return acpschema.RequestToolCallConfirmationResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodRequestToolCallConfirmation))
}
func (UnimplementedHandler) PushToolCall(context.Context, acpschema.PushToolCallParams) (acpschema.PushToolCallResult, error) {
	return acpschema.PushToolCallResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodPushToolCall))
}
func (UnimplementedHandler) UpdateToolCall(context.Context, acpschema.UpdateToolCallParams) (acpschema.UpdateToolCallResult, error) {
	return acpschema.UpdateToolCallResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodUpdateToolCall))
}
func (UnimplementedHandler) EndTurn(context.Context, acpschema.EndTurnParams) (acpschema.EndTurnResult, error) {
	return acpschema.EndTurnResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodEndTurn))
}

func unimplemented(method string) error {
	return &acp.Error{Code: acp.ErrCodeInternal, Message: "client: " + method + " not implemented"}
}

// Side is the client's typed facade over [acp.Conn]: it calls agent
// methods and dispatches incoming client-method requests to a [Handler].
type Side struct {
	conn    *acp.Conn
	handler Handler
}

// New wires r/w as an ACP connection's duplex byte pair and
// returns a Side ready to have its Run method driven. handler serves
// incoming client-method calls from the agent.
func New(r io.Reader, w io.Writer, handler Handler, opts ...acp.Option) *Side {
	s := &Side{handler: handler}
	s.conn = acp.NewConn(r, w, acpschema.AgentMethods, acpschema.ClientMethods, s.dispatch, opts...)
	return s
}

// Run drives the underlying connection until ctx is cancelled or the peer
// disconnects. See [acp.Conn.Run].
func (s *Side) Run(ctx context.Context) error { return s.conn.Run(ctx) }

func (s *Side) dispatch(ctx context.Context, req acp.AnyRequest) (acp.AnyResponse, *acp.Error) {
	switch p := req.(type) {
	case acpschema.StreamMessageChunkParams:
		return wrap(s.handler.StreamMessageChunk(ctx, p))
	case acpschema.ReadTextFileParams:
		return wrap(s.handler.ReadTextFile(ctx, p))
	case acpschema.ReadBinaryFileParams:
		return wrap(s.handler.ReadBinaryFile(ctx, p))
	case acpschema.StatParams:
		return wrap(s.handler.Stat(ctx, p))
	case acpschema.GlobSearchParams:
		return wrap(s.handler.GlobSearch(ctx, p))
	case acpschema.RequestToolCallConfirmationParams:
		return wrap(s.handler.RequestToolCallConfirmation(ctx, p))
	case acpschema.PushToolCallParams:
		return wrap(s.handler.PushToolCall(ctx, p))
	case acpschema.UpdateToolCallParams:
		return wrap(s.handler.UpdateToolCall(ctx, p))
	case acpschema.EndTurnParams:
		return wrap(s.handler.EndTurn(ctx, p))
	default:
		return nil, &acp.Error{Code: acp.ErrCodeInternal, Message: "client: unexpected request type"}
	}
}

// wrap adapts a (typed result, error) handler return into the
// (acp.AnyResponse, *acp.Error) shape [acp.HandlerFunc] requires.
func wrap[R acp.AnyResponse](res R, err error) (acp.AnyResponse, *acp.Error) {
	if err != nil {
		return nil, acp.NewHandlerError(err)
	}
	return res, nil
}

// --- agent methods this side calls ---

// Initialize performs the capability handshake.
func (s *Side) Initialize(ctx context.Context, p acpschema.InitializeParams) (acpschema.InitializeResult, error) {
	return acp.Call[acpschema.InitializeResult](ctx, s.conn, p)
}

// Authenticate completes an authentication method the agent advertised.
func (s *Side) Authenticate(ctx context.Context, p acpschema.AuthenticateParams) (acpschema.AuthenticateResult, error) {
	return acp.Call[acpschema.AuthenticateResult](ctx, s.conn, p)
}

// GetThreads lists the agent's known threads.
func (s *Side) GetThreads(ctx context.Context) (acpschema.GetThreadsResult, error) {
	return acp.Call[acpschema.GetThreadsResult](ctx, s.conn, acpschema.GetThreadsParams{})
}

// CreateThread opens a new, empty thread.
func (s *Side) CreateThread(ctx context.Context) (acpschema.CreateThreadResult, error) {
	return acp.Call[acpschema.CreateThreadResult](ctx, s.conn, acpschema.CreateThreadParams{})
}

// OpenThread replays an existing thread's history.
func (s *Side) OpenThread(ctx context.Context, p acpschema.OpenThreadParams) (acpschema.OpenThreadResult, error) {
	return acp.Call[acpschema.OpenThreadResult](ctx, s.conn, p)
}

// GetThreadEntries fetches a thread's entry log.
func (s *Side) GetThreadEntries(ctx context.Context, p acpschema.GetThreadEntriesParams) (acpschema.GetThreadEntriesResult, error) {
	return acp.Call[acpschema.GetThreadEntriesResult](ctx, s.conn, p)
}

// SendMessage delivers a user message to a thread.
func (s *Side) SendMessage(ctx context.Context, p acpschema.SendMessageParams) (acpschema.SendMessageResult, error) {
	return acp.Call[acpschema.SendMessageResult](ctx, s.conn, p)
}

// CancelSendMessage requests that an in-flight sendMessage stop.
func (s *Side) CancelSendMessage(ctx context.Context, p acpschema.CancelSendMessageParams) (acpschema.CancelSendMessageResult, error) {
	return acp.Call[acpschema.CancelSendMessageResult](ctx, s.conn, p)
}
