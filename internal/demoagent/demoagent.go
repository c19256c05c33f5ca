// Package demoagent is a minimal, in-memory ACP agent used by cmd/acp-agent
// and exercised directly in tests: it implements [agentside.Handler] over a
// map of threads, echoing each sent message back as a single streamed
// assistant chunk followed by endTurn.
//
// Persisted state is explicitly out of scope (per the protocol's own
// non-goals) — this agent's threads live only as long as the process.
package demoagent

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dmora/acp/acpschema"
	"github.com/dmora/acp/agentside"
)

// Agent is an in-memory ACP agent. The zero value is not usable; use New.
type Agent struct {
	agentside.UnimplementedHandler

	mu      sync.Mutex
	threads map[acpschema.ThreadID]*thread

	// client is the facade this agent uses to call back into the peer
	// (streamMessageChunk, endTurn, ...). It's set by Attach once the
	// connection is constructed, since the agent and its Side reference
	// each other.
	client *agentside.Side
}

type thread struct {
	meta    acpschema.ThreadMetadata
	entries []acpschema.ThreadEntry
}

// New constructs an empty Agent.
func New() *Agent {
	return &Agent{threads: make(map[acpschema.ThreadID]*thread)}
}

// Attach records the Side this agent should use to call back into the
// client. Must be called once, before the connection starts running.
func (a *Agent) Attach(side *agentside.Side) {
	a.client = side
}

func (a *Agent) Initialize(ctx context.Context, p acpschema.InitializeParams) (acpschema.InitializeResult, error) {
	return acpschema.InitializeResult{IsAuthenticated: true}, nil
}

func (a *Agent) Authenticate(ctx context.Context, p acpschema.AuthenticateParams) (acpschema.AuthenticateResult, error) {
	return acpschema.AuthenticateResult{IsAuthenticated: true}, nil
}

func (a *Agent) GetThreads(ctx context.Context, p acpschema.GetThreadsParams) (acpschema.GetThreadsResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]acpschema.ThreadMetadata, 0, len(a.threads))
	for _, th := range a.threads {
		out = append(out, th.meta)
	}
	return acpschema.GetThreadsResult{Threads: out}, nil
}

func (a *Agent) CreateThread(ctx context.Context, p acpschema.CreateThreadParams) (acpschema.CreateThreadResult, error) {
	id := acpschema.ThreadID(uuid.NewString())

	a.mu.Lock()
	a.threads[id] = &thread{meta: acpschema.ThreadMetadata{ID: id, Title: "untitled"}}
	a.mu.Unlock()

	return acpschema.CreateThreadResult{ThreadID: id}, nil
}

func (a *Agent) OpenThread(ctx context.Context, p acpschema.OpenThreadParams) (acpschema.OpenThreadResult, error) {
	a.mu.Lock()
	th, ok := a.threads[p.ThreadID]
	a.mu.Unlock()
	if !ok {
		return acpschema.OpenThreadResult{}, fmt.Errorf("demoagent: unknown thread %q", p.ThreadID)
	}
	return acpschema.OpenThreadResult{Entries: th.entries}, nil
}

func (a *Agent) GetThreadEntries(ctx context.Context, p acpschema.GetThreadEntriesParams) (acpschema.GetThreadEntriesResult, error) {
	a.mu.Lock()
	th, ok := a.threads[p.ThreadID]
	a.mu.Unlock()
	if !ok {
		return acpschema.GetThreadEntriesResult{}, fmt.Errorf("demoagent: unknown thread %q", p.ThreadID)
	}
	return acpschema.GetThreadEntriesResult{Entries: th.entries}, nil
}

// SendMessage records the user's message, then — if a client facade is
// attached — echoes it back as one streamed assistant chunk and an
// endTurn, the way a trivial real agent's turn loop would.
func (a *Agent) SendMessage(ctx context.Context, p acpschema.SendMessageParams) (acpschema.SendMessageResult, error) {
	a.mu.Lock()
	th, ok := a.threads[p.ThreadID]
	if ok {
		th.entries = append(th.entries, acpschema.ThreadEntry{Kind: acpschema.ThreadEntryMessage, Message: &p.Message})
	}
	a.mu.Unlock()
	if !ok {
		return acpschema.SendMessageResult{}, fmt.Errorf("demoagent: unknown thread %q", p.ThreadID)
	}

	if a.client != nil {
		reply := echo(p.Message)
		if _, err := a.client.StreamMessageChunk(ctx, acpschema.StreamMessageChunkParams{
			ThreadID: p.ThreadID,
			Chunk:    reply,
		}); err != nil {
			return acpschema.SendMessageResult{}, err
		}

		a.mu.Lock()
		th.entries = append(th.entries, acpschema.ThreadEntry{
			Kind:    acpschema.ThreadEntryMessage,
			Message: &acpschema.Message{Role: acpschema.RoleAssistant, Chunks: []acpschema.MessageChunk{reply}},
		})
		a.mu.Unlock()

		if _, err := a.client.EndTurn(ctx, acpschema.EndTurnParams{ThreadID: p.ThreadID}); err != nil {
			return acpschema.SendMessageResult{}, err
		}
	}

	return acpschema.SendMessageResult{}, nil
}

func (a *Agent) CancelSendMessage(ctx context.Context, p acpschema.CancelSendMessageParams) (acpschema.CancelSendMessageResult, error) {
	// The in-memory agent answers sendMessage synchronously, so there is
	// never an in-flight turn left to cancel by the time this arrives.
	return acpschema.CancelSendMessageResult{}, nil
}

func echo(msg acpschema.Message) acpschema.MessageChunk {
	var text string
	for _, c := range msg.Chunks {
		text += c.Text
	}
	return acpschema.TextChunk("echo: " + text)
}
