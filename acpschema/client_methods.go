package acpschema

import "github.com/dmora/acp"

// ClientMethods is the [acp.Registry] for methods the agent calls and the
// client handles (spec §6 "Client methods (agent-initiated)").
var ClientMethods acp.Registry = newRegistry(
	method[StreamMessageChunkParams, StreamMessageChunkResult](MethodStreamMessageChunk),
	method[ReadTextFileParams, ReadTextFileResult](MethodReadTextFile),
	method[ReadBinaryFileParams, ReadBinaryFileResult](MethodReadBinaryFile),
	method[StatParams, StatResult](MethodStat),
	method[GlobSearchParams, GlobSearchResult](MethodGlobSearch),
	method[RequestToolCallConfirmationParams, RequestToolCallConfirmationResult](MethodRequestToolCallConfirmation),
	method[PushToolCallParams, PushToolCallResult](MethodPushToolCall),
	method[UpdateToolCallParams, UpdateToolCallResult](MethodUpdateToolCall),
	method[EndTurnParams, EndTurnResult](MethodEndTurn),
)

// --- streamMessageChunk ---

// StreamMessageChunkParams delivers one incremental chunk of the agent's
// reply to a thread.
type StreamMessageChunkParams struct {
	ThreadID ThreadID     `json:"threadId"`
	Chunk    MessageChunk `json:"chunk"`
}

// StreamMessageChunkResult acknowledges one streamed chunk.
type StreamMessageChunkResult struct{}

func (p StreamMessageChunkParams) Method() string { return MethodStreamMessageChunk }
func (r StreamMessageChunkResult) Method() string { return MethodStreamMessageChunk }

// --- readTextFile ---

// ReadTextFileParams requests a (possibly partial) read of a text file in
// the client's workspace. LineOffset/LineLimit are nil for a full read.
type ReadTextFileParams struct {
	ThreadID   ThreadID `json:"threadId"`
	Path       string   `json:"path"`
	LineOffset *uint32  `json:"lineOffset,omitempty"`
	LineLimit  *uint32  `json:"lineLimit,omitempty"`
}

// ReadTextFileResult returns the requested slice of file content along
// with the version it was read at (spec §6 "file versions are unsigned
// 64-bit counters").
type ReadTextFileResult struct {
	Version FileVersion `json:"version"`
	Content string      `json:"content"`
}

func (p ReadTextFileParams) Method() string { return MethodReadTextFile }
func (r ReadTextFileResult) Method() string { return MethodReadTextFile }

// --- readBinaryFile ---

// ReadBinaryFileParams requests a (possibly partial) read of a binary file.
// ByteOffset/ByteLimit are nil for a full read.
type ReadBinaryFileParams struct {
	ThreadID   ThreadID `json:"threadId"`
	Path       string   `json:"path"`
	ByteOffset *uint64  `json:"byteOffset,omitempty"`
	ByteLimit  *uint64  `json:"byteLimit,omitempty"`
}

// ReadBinaryFileResult returns base64-encoded content and the version it
// was read at.
type ReadBinaryFileResult struct {
	Version FileVersion `json:"version"`
	Content string      `json:"content"` // base64
}

func (p ReadBinaryFileParams) Method() string { return MethodReadBinaryFile }
func (r ReadBinaryFileResult) Method() string { return MethodReadBinaryFile }

// --- stat ---

// StatParams requests filesystem metadata for a path in the client's
// workspace.
type StatParams struct {
	ThreadID ThreadID `json:"threadId"`
	Path     string   `json:"path"`
}

// StatResult reports whether a path exists and whether it is a directory.
type StatResult struct {
	Exists      bool `json:"exists"`
	IsDirectory bool `json:"isDirectory"`
}

func (p StatParams) Method() string { return MethodStat }
func (r StatResult) Method() string { return MethodStat }

// --- globSearch ---

// GlobSearchParams requests a glob match over the client's workspace.
type GlobSearchParams struct {
	ThreadID ThreadID `json:"threadId"`
	Pattern  string   `json:"pattern"`
}

// GlobSearchResult is the list of matching paths.
type GlobSearchResult struct {
	Matches []string `json:"matches"`
}

func (p GlobSearchParams) Method() string { return MethodGlobSearch }
func (r GlobSearchResult) Method() string { return MethodGlobSearch }

// --- requestToolCallConfirmation ---

// RequestToolCallConfirmationParams asks the client's user to approve (or
// deny) a pending tool call.
type RequestToolCallConfirmationParams struct {
	ThreadID     ThreadID             `json:"threadId"`
	ToolCallID   string               `json:"toolCallId"`
	Title        string               `json:"title"`
	Icon         Icon                 `json:"icon"`
	Confirmation ToolCallConfirmation `json:"confirmation"`
}

// RequestToolCallConfirmationResult carries the user's decision.
type RequestToolCallConfirmationResult struct {
	Outcome ToolCallOutcome `json:"outcome"`
}

func (p RequestToolCallConfirmationParams) Method() string {
	return MethodRequestToolCallConfirmation
}
func (r RequestToolCallConfirmationResult) Method() string {
	return MethodRequestToolCallConfirmation
}

// --- pushToolCall ---

// PushToolCallParams announces a new tool call to the client for display.
type PushToolCallParams struct {
	ThreadID   ThreadID       `json:"threadId"`
	ToolCallID string         `json:"toolCallId"`
	Title      string         `json:"title"`
	Icon       Icon           `json:"icon"`
	Status     ToolCallStatus `json:"status"`
}

// PushToolCallResult acknowledges the announcement.
type PushToolCallResult struct{}

func (p PushToolCallParams) Method() string { return MethodPushToolCall }
func (r PushToolCallResult) Method() string { return MethodPushToolCall }

// --- updateToolCall ---

// UpdateToolCallParams reports a status or content change for a
// previously pushed tool call.
type UpdateToolCallParams struct {
	ThreadID   ThreadID       `json:"threadId"`
	ToolCallID string         `json:"toolCallId"`
	Status     ToolCallStatus `json:"status"`
	Content    string         `json:"content,omitempty"`
}

// UpdateToolCallResult acknowledges the update.
type UpdateToolCallResult struct{}

func (p UpdateToolCallParams) Method() string { return MethodUpdateToolCall }
func (r UpdateToolCallResult) Method() string { return MethodUpdateToolCall }

// --- endTurn ---

// EndTurnParams signals that the agent has finished its turn on a thread.
type EndTurnParams struct {
	ThreadID ThreadID `json:"threadId"`
}

// EndTurnResult acknowledges the end of turn.
type EndTurnResult struct{}

func (p EndTurnParams) Method() string { return MethodEndTurn }
func (r EndTurnResult) Method() string { return MethodEndTurn }
