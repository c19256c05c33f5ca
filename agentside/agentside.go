// Package agentside implements the agent side of an ACP connection: the
// [Handler] contract for serving agent methods a client calls (initialize,
// getThreads, sendMessage, ...) and the typed facade for calling client
// methods back (streamMessageChunk, readTextFile,
// requestToolCallConfirmation, ...).
//
// It is the mirror image of package client: same [acp.Conn] engine, same
// wrap/dispatch shape, registries swapped.
package agentside

import (
	"context"
	"io"

	"github.com/dmora/acp"
	"github.com/dmora/acp/acpschema"
)

// Handler serves the agent methods a client calls on this side of the
// connection (spec §6 "Agent methods (client-initiated)"). Embed
// [UnimplementedHandler] to only implement the methods a given agent
// actually supports.
type Handler interface {
	Initialize(ctx context.Context, p acpschema.InitializeParams) (acpschema.InitializeResult, error)
	Authenticate(ctx context.Context, p acpschema.AuthenticateParams) (acpschema.AuthenticateResult, error)
	GetThreads(ctx context.Context, p acpschema.GetThreadsParams) (acpschema.GetThreadsResult, error)
	CreateThread(ctx context.Context, p acpschema.CreateThreadParams) (acpschema.CreateThreadResult, error)
	OpenThread(ctx context.Context, p acpschema.OpenThreadParams) (acpschema.OpenThreadResult, error)
	GetThreadEntries(ctx context.Context, p acpschema.GetThreadEntriesParams) (acpschema.GetThreadEntriesResult, error)
	SendMessage(ctx context.Context, p acpschema.SendMessageParams) (acpschema.SendMessageResult, error)
	CancelSendMessage(ctx context.Context, p acpschema.CancelSendMessageParams) (acpschema.CancelSendMessageResult, error)
}

// UnimplementedHandler answers every agent method with an error. Embed it
// in a Handler implementation to pick and choose which methods to
// override.
type UnimplementedHandler struct{}

func (UnimplementedHandler) Initialize(context.Context, acpschema.InitializeParams) (acpschema.InitializeResult, error) {
	return acpschema.InitializeResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodInitialize))
}
func (UnimplementedHandler) Authenticate(context.Context, acpschema.AuthenticateParams) (acpschema.AuthenticateResult, error) {
	return acpschema.AuthenticateResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodAuthenticate))
}
func (UnimplementedHandler) GetThreads(context.Context, acpschema.GetThreadsParams) (acpschema.GetThreadsResult, error) {
	return acpschema.GetThreadsResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodGetThreads))
}
func (UnimplementedHandler) CreateThread(context.Context, acpschema.CreateThreadParams) (acpschema.CreateThreadResult, error) {
	return acpschema.CreateThreadResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodCreateThread))
}
func (UnimplementedHandler) OpenThread(context.Context, acpschema.OpenThreadParams) (acpschema.OpenThreadResult, error) {
	return acpschema.OpenThreadResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodOpenThread))
}
func (UnimplementedHandler) GetThreadEntries(context.Context, acpschema.GetThreadEntriesParams) (acpschema.GetThreadEntriesResult, error) {
	return acpschema.GetThreadEntriesResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodGetThreadEntries))
}
func (UnimplementedHandler) SendMessage(context.Context, acpschema.SendMessageParams) (acpschema.SendMessageResult, error) {
	return acpschema.SendMessageResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodSendMessage))
}
func (UnimplementedHandler) CancelSendMessage(context.Context, acpschema.CancelSendMessageParams) (acpschema.CancelSendMessageResult, error) {
	return acpschema.CancelSendMessageResult{}, acp.NewHandlerError(unimplemented(acpschema.MethodCancelSendMessage))
}

func unimplemented(method string) error {
	return &acp.Error{Code: acp.ErrCodeInternal, Message: "agent: " + method + " not implemented"}
}

// Side is the agent's typed facade over [acp.Conn]: it dispatches incoming
// agent-method requests to a [Handler] and calls client methods back.
type Side struct {
	conn    *acp.Conn
	handler Handler
}

// New wires r/w as an ACP connection's duplex byte pair and returns a Side
// ready to have its Run method driven. handler serves incoming
// agent-method calls from the client.
func New(r io.Reader, w io.Writer, handler Handler, opts ...acp.Option) *Side {
	s := &Side{handler: handler}
	s.conn = acp.NewConn(r, w, acpschema.ClientMethods, acpschema.AgentMethods, s.dispatch, opts...)
	return s
}

// Run drives the underlying connection until ctx is cancelled or the peer
// disconnects. See [acp.Conn.Run].
func (s *Side) Run(ctx context.Context) error { return s.conn.Run(ctx) }

func (s *Side) dispatch(ctx context.Context, req acp.AnyRequest) (acp.AnyResponse, *acp.Error) {
	switch p := req.(type) {
	case acpschema.InitializeParams:
		return wrap(s.handler.Initialize(ctx, p))
	case acpschema.AuthenticateParams:
		return wrap(s.handler.Authenticate(ctx, p))
	case acpschema.GetThreadsParams:
		return wrap(s.handler.GetThreads(ctx, p))
	case acpschema.CreateThreadParams:
		return wrap(s.handler.CreateThread(ctx, p))
	case acpschema.OpenThreadParams:
		return wrap(s.handler.OpenThread(ctx, p))
	case acpschema.GetThreadEntriesParams:
		return wrap(s.handler.GetThreadEntries(ctx, p))
	case acpschema.SendMessageParams:
		return wrap(s.handler.SendMessage(ctx, p))
	case acpschema.CancelSendMessageParams:
		return wrap(s.handler.CancelSendMessage(ctx, p))
	default:
		return nil, &acp.Error{Code: acp.ErrCodeInternal, Message: "agent: unexpected request type"}
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

// --- client methods this side calls ---

// StreamMessageChunk streams one incremental chunk of the agent's reply.
func (s *Side) StreamMessageChunk(ctx context.Context, p acpschema.StreamMessageChunkParams) (acpschema.StreamMessageChunkResult, error) {
	return acp.Call[acpschema.StreamMessageChunkResult](ctx, s.conn, p)
}

// ReadTextFile requests a (possibly partial) text file read from the client.
func (s *Side) ReadTextFile(ctx context.Context, p acpschema.ReadTextFileParams) (acpschema.ReadTextFileResult, error) {
	return acp.Call[acpschema.ReadTextFileResult](ctx, s.conn, p)
}

// ReadBinaryFile requests a (possibly partial) binary file read.
func (s *Side) ReadBinaryFile(ctx context.Context, p acpschema.ReadBinaryFileParams) (acpschema.ReadBinaryFileResult, error) {
	return acp.Call[acpschema.ReadBinaryFileResult](ctx, s.conn, p)
}

// Stat requests filesystem metadata for a path in the client's workspace.
func (s *Side) Stat(ctx context.Context, p acpschema.StatParams) (acpschema.StatResult, error) {
	return acp.Call[acpschema.StatResult](ctx, s.conn, p)
}

// GlobSearch requests a glob match over the client's workspace.
func (s *Side) GlobSearch(ctx context.Context, p acpschema.GlobSearchParams) (acpschema.GlobSearchResult, error) {
	return acp.Call[acpschema.GlobSearchResult](ctx, s.conn, p)
}

// RequestToolCallConfirmation asks the client's user to approve a pending
// tool call.
func (s *Side) RequestToolCallConfirmation(ctx context.Context, p acpschema.RequestToolCallConfirmationParams) (acpschema.RequestToolCallConfirmationResult, error) {
	return acp.Call[acpschema.RequestToolCallConfirmationResult](ctx, s.conn, p)
}

// PushToolCall announces a new tool call to the client for display.
func (s *Side) PushToolCall(ctx context.Context, p acpschema.PushToolCallParams) (acpschema.PushToolCallResult, error) {
	return acp.Call[acpschema.PushToolCallResult](ctx, s.conn, p)
}

// UpdateToolCall reports a status or content change for a previously
// pushed tool call.
func (s *Side) UpdateToolCall(ctx context.Context, p acpschema.UpdateToolCallParams) (acpschema.UpdateToolCallResult, error) {
	return acp.Call[acpschema.UpdateToolCallResult](ctx, s.conn, p)
}

// EndTurn signals that the agent has finished its turn on a thread.
func (s *Side) EndTurn(ctx context.Context, p acpschema.EndTurnParams) (acpschema.EndTurnResult, error) {
	return acp.Call[acpschema.EndTurnResult](ctx, s.conn, p)
}
