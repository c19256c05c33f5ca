package acpschema

import "github.com/dmora/acp"

// AgentMethods is the [acp.Registry] for methods the client calls and the
// agent handles (spec §6 "Agent methods (client-initiated)").
var AgentMethods acp.Registry = newRegistry(
	method[InitializeParams, InitializeResult](MethodInitialize),
	method[AuthenticateParams, AuthenticateResult](MethodAuthenticate),
	method[GetThreadsParams, GetThreadsResult](MethodGetThreads),
	method[CreateThreadParams, CreateThreadResult](MethodCreateThread),
	method[OpenThreadParams, OpenThreadResult](MethodOpenThread),
	method[GetThreadEntriesParams, GetThreadEntriesResult](MethodGetThreadEntries),
	method[SendMessageParams, SendMessageResult](MethodSendMessage),
	method[CancelSendMessageParams, CancelSendMessageResult](MethodCancelSendMessage),
)

// --- initialize ---

// Implementation identifies one endpoint of the connection (spec §6).
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams begins the capability handshake.
type InitializeParams struct {
	ProtocolVersion int             `json:"protocolVersion"`
	ClientInfo      *Implementation `json:"clientInfo,omitempty"`
}

// InitializeResult is the agent's reply to initialize. Per spec §6,
// "handshake (initialize) returns only an isAuthenticated flag and does not
// currently negotiate versions".
type InitializeResult struct {
	IsAuthenticated bool `json:"isAuthenticated"`
}

func (p InitializeParams) Method() string { return MethodInitialize }
func (r InitializeResult) Method() string { return MethodInitialize }

// --- authenticate ---

// AuthenticateParams selects an authentication method previously advertised
// by the agent.
type AuthenticateParams struct {
	MethodID string `json:"methodId"`
}

// AuthenticateResult acknowledges a completed authentication.
type AuthenticateResult struct {
	IsAuthenticated bool `json:"isAuthenticated"`
}

func (p AuthenticateParams) Method() string { return MethodAuthenticate }
func (r AuthenticateResult) Method() string { return MethodAuthenticate }

// --- getThreads ---

// ThreadMetadata summarizes one thread in a getThreads listing.
type ThreadMetadata struct {
	ID         ThreadID `json:"id"`
	Title      string   `json:"title"`
	ModifiedAt string   `json:"modifiedAt,omitempty"` // RFC 3339; string to avoid a forced time.Time wire dependency
}

// GetThreadsParams takes no arguments.
type GetThreadsParams struct{}

// GetThreadsResult lists every thread the agent knows about.
type GetThreadsResult struct {
	Threads []ThreadMetadata `json:"threads"`
}

func (p GetThreadsParams) Method() string { return MethodGetThreads }
func (r GetThreadsResult) Method() string { return MethodGetThreads }

// --- createThread ---

// CreateThreadParams takes no arguments.
type CreateThreadParams struct{}

// CreateThreadResult returns the new thread's opaque id.
type CreateThreadResult struct {
	ThreadID ThreadID `json:"threadId"`
}

func (p CreateThreadParams) Method() string { return MethodCreateThread }
func (r CreateThreadResult) Method() string { return MethodCreateThread }

// --- openThread ---

// OpenThreadParams names the thread to open.
type OpenThreadParams struct {
	ThreadID ThreadID `json:"threadId"`
}

// OpenThreadResult replays the thread's history as it stood at open time.
type OpenThreadResult struct {
	Entries []ThreadEntry `json:"entries"`
}

func (p OpenThreadParams) Method() string { return MethodOpenThread }
func (r OpenThreadResult) Method() string { return MethodOpenThread }

// --- getThreadEntries ---

// GetThreadEntriesParams names the thread whose entries to fetch.
type GetThreadEntriesParams struct {
	ThreadID ThreadID `json:"threadId"`
}

// GetThreadEntriesResult is the thread's entry log.
type GetThreadEntriesResult struct {
	Entries []ThreadEntry `json:"entries"`
}

func (p GetThreadEntriesParams) Method() string { return MethodGetThreadEntries }
func (r GetThreadEntriesResult) Method() string { return MethodGetThreadEntries }

// --- sendMessage / cancelSendMessage ---

// SendMessageParams delivers a user message to a thread.
type SendMessageParams struct {
	ThreadID ThreadID `json:"threadId"`
	Message  Message  `json:"message"`
}

// SendMessageResult acknowledges receipt; the agent's reply streams back
// via streamMessageChunk / endTurn on the client registry, not here.
type SendMessageResult struct{}

func (p SendMessageParams) Method() string { return MethodSendMessage }
func (r SendMessageResult) Method() string { return MethodSendMessage }

// CancelSendMessageParams requests that an in-flight sendMessage stop.
// There is no wire-level cancellation frame (spec §5) — this is an
// ordinary schema-level method the client calls like any other.
type CancelSendMessageParams struct {
	ThreadID ThreadID `json:"threadId"`
}

// CancelSendMessageResult acknowledges the cancellation request.
type CancelSendMessageResult struct{}

func (p CancelSendMessageParams) Method() string { return MethodCancelSendMessage }
func (r CancelSendMessageResult) Method() string { return MethodCancelSendMessage }

// --- shared message / entry shapes ---

// Message is a role-tagged sequence of content chunks (spec §6 "message
// role is user | assistant").
type Message struct {
	Role   MessageRole    `json:"role"`
	Chunks []MessageChunk `json:"chunks"`
}

// MessageChunk is a single piece of message content. Today only text
// chunks are modeled; Kind leaves room for the schema to grow without
// breaking the wire shape (spec §6 describes thread entries and messages
// structurally, not exhaustively).
type MessageChunk struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// TextChunk builds a text MessageChunk.
func TextChunk(text string) MessageChunk {
	return MessageChunk{Kind: "text", Text: text}
}

// ThreadEntryKind discriminates [ThreadEntry]'s tagged union.
type ThreadEntryKind string

// Valid ThreadEntryKind values.
const (
	ThreadEntryMessage  ThreadEntryKind = "message"
	ThreadEntryReadFile ThreadEntryKind = "readFile"
)

// ThreadEntry is one item in a thread's history: either a message or a
// record of a file read performed during the turn.
type ThreadEntry struct {
	Kind     ThreadEntryKind `json:"kind"`
	Message  *Message        `json:"message,omitempty"`
	ReadFile *ReadFileEntry  `json:"readFile,omitempty"`
}

// ReadFileEntry records a file read that happened during a turn.
type ReadFileEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
