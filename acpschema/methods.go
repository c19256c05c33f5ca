package acpschema

// Agent method names — client-initiated, decoded/handled by the agent
// (spec §6 "Agent methods (client-initiated)").
const (
	MethodInitialize        = "initialize"
	MethodAuthenticate      = "authenticate"
	MethodGetThreads        = "getThreads"
	MethodCreateThread      = "createThread"
	MethodOpenThread        = "openThread"
	MethodGetThreadEntries  = "getThreadEntries"
	MethodSendMessage       = "sendMessage"
	MethodCancelSendMessage = "cancelSendMessage"
)

// Client method names — agent-initiated, decoded/handled by the client
// (spec §6 "Client methods (agent-initiated)").
const (
	MethodStreamMessageChunk          = "streamMessageChunk"
	methodStreamAssistantMessageChunk = "streamAssistantMessageChunk" // legacy alias, spec §9
	MethodReadTextFile                = "readTextFile"
	MethodReadBinaryFile              = "readBinaryFile"
	MethodStat                        = "stat"
	MethodGlobSearch                  = "globSearch"
	MethodRequestToolCallConfirmation = "requestToolCallConfirmation"
	MethodPushToolCall                = "pushToolCall"
	MethodUpdateToolCall              = "updateToolCall"
	MethodEndTurn                     = "endTurn"
)

// LegacyAliases returns the client-method wire names that earlier schema
// revisions used in place of today's canonical names (spec §9 "Schema
// drift"). Pass the result to [acp.WithMethodAliases] on the decoding side
// so an older peer's frames still decode, without widening the registry's
// closed sum to carry two entries for one response type.
func LegacyAliases() map[string]string {
	return map[string]string{
		methodStreamAssistantMessageChunk: MethodStreamMessageChunk,
	}
}
