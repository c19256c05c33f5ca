package acpschema

import (
	"encoding/json"
	"fmt"
)

// ThreadID is an opaque thread identifier (spec §3 "thread identifiers are
// opaque strings").
type ThreadID string

// FileVersion is an unsigned counter identifying a file's content version
// (spec §6 "file versions are unsigned 64-bit counters").
type FileVersion uint64

// MessageRole is a closed enum: user | assistant (spec §6).
type MessageRole string

// Valid MessageRole values.
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

func (r MessageRole) validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("acpschema: invalid message role %q", string(r))
	}
}

// MarshalJSON rejects values outside the closed enum at the point of
// serialization, so a caller can never put an invalid role on the wire.
func (r MessageRole) MarshalJSON() ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON rejects wire values outside the closed enum.
func (r *MessageRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := MessageRole(s)
	if err := v.validate(); err != nil {
		return err
	}
	*r = v
	return nil
}

// Icon is a closed enum of tool-call icon kinds (spec §6).
type Icon string

// Valid Icon values.
const (
	IconFileSearch Icon = "fileSearch"
	IconFolder     Icon = "folder"
	IconGlobe      Icon = "globe"
	IconHammer     Icon = "hammer"
	IconLightBulb  Icon = "lightBulb"
	IconPencil     Icon = "pencil"
	IconRegex      Icon = "regex"
	IconTerminal   Icon = "terminal"
)

func (i Icon) validate() error {
	switch i {
	case IconFileSearch, IconFolder, IconGlobe, IconHammer, IconLightBulb, IconPencil, IconRegex, IconTerminal:
		return nil
	default:
		return fmt.Errorf("acpschema: invalid icon %q", string(i))
	}
}

// MarshalJSON rejects values outside the closed enum.
func (i Icon) MarshalJSON() ([]byte, error) {
	if err := i.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(string(i))
}

// UnmarshalJSON rejects wire values outside the closed enum.
func (i *Icon) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := Icon(s)
	if err := v.validate(); err != nil {
		return err
	}
	*i = v
	return nil
}

// ToolCallOutcome is a closed enum of permission-confirmation outcomes
// (spec §6).
type ToolCallOutcome string

// Valid ToolCallOutcome values.
const (
	OutcomeAllow                ToolCallOutcome = "allow"
	OutcomeAlwaysAllow          ToolCallOutcome = "alwaysAllow"
	OutcomeAlwaysAllowMcpServer ToolCallOutcome = "alwaysAllowMcpServer"
	OutcomeAlwaysAllowTool      ToolCallOutcome = "alwaysAllowTool"
	OutcomeReject               ToolCallOutcome = "reject"
	OutcomeCancel               ToolCallOutcome = "cancel"
)

func (o ToolCallOutcome) validate() error {
	switch o {
	case OutcomeAllow, OutcomeAlwaysAllow, OutcomeAlwaysAllowMcpServer, OutcomeAlwaysAllowTool, OutcomeReject, OutcomeCancel:
		return nil
	default:
		return fmt.Errorf("acpschema: invalid tool call outcome %q", string(o))
	}
}

// MarshalJSON rejects values outside the closed enum.
func (o ToolCallOutcome) MarshalJSON() ([]byte, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(string(o))
}

// UnmarshalJSON rejects wire values outside the closed enum.
func (o *ToolCallOutcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := ToolCallOutcome(s)
	if err := v.validate(); err != nil {
		return err
	}
	*o = v
	return nil
}

// ToolCallStatus is a closed enum: running | finished | error (spec §6).
type ToolCallStatus string

// Valid ToolCallStatus values.
const (
	ToolCallRunning  ToolCallStatus = "running"
	ToolCallFinished ToolCallStatus = "finished"
	ToolCallError    ToolCallStatus = "error"
)

func (s ToolCallStatus) validate() error {
	switch s {
	case ToolCallRunning, ToolCallFinished, ToolCallError:
		return nil
	default:
		return fmt.Errorf("acpschema: invalid tool call status %q", string(s))
	}
}

// MarshalJSON rejects values outside the closed enum.
func (s ToolCallStatus) MarshalJSON() ([]byte, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON rejects wire values outside the closed enum.
func (s *ToolCallStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	ts := ToolCallStatus(v)
	if err := ts.validate(); err != nil {
		return err
	}
	*s = ts
	return nil
}

// ToolCallConfirmationKind discriminates [ToolCallConfirmation]'s tagged
// union (spec §6: "edit, execute, mcp, fetch, other").
type ToolCallConfirmationKind string

// Valid ToolCallConfirmationKind values.
const (
	ConfirmationEdit    ToolCallConfirmationKind = "edit"
	ConfirmationExecute ToolCallConfirmationKind = "execute"
	ConfirmationMCP     ToolCallConfirmationKind = "mcp"
	ConfirmationFetch   ToolCallConfirmationKind = "fetch"
	ConfirmationOther   ToolCallConfirmationKind = "other"
)

// ToolCallConfirmation is the tagged union describing what kind of
// confirmation a tool call requires (spec §6). Only the field matching Kind
// is populated; this is the idiomatic Go rendering of a Rust
// #[serde(tag = "kind")] enum: a discriminator plus one pointer field per
// variant.
type ToolCallConfirmation struct {
	Kind ToolCallConfirmationKind `json:"kind"`

	Edit    *EditConfirmation    `json:"edit,omitempty"`
	Execute *ExecuteConfirmation `json:"execute,omitempty"`
	MCP     *MCPConfirmation     `json:"mcp,omitempty"`
	Fetch   *FetchConfirmation   `json:"fetch,omitempty"`
	Other   *OtherConfirmation   `json:"other,omitempty"`
}

// EditConfirmation describes a pending file edit.
type EditConfirmation struct {
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

// ExecuteConfirmation describes a pending shell command execution.
type ExecuteConfirmation struct {
	Command string `json:"command"`
	Cwd     string `json:"cwd,omitempty"`
}

// MCPConfirmation describes a pending call into an MCP server tool.
type MCPConfirmation struct {
	ServerName string `json:"serverName"`
	ToolName   string `json:"toolName"`
}

// FetchConfirmation describes a pending outbound network fetch.
type FetchConfirmation struct {
	URL string `json:"url"`
}

// OtherConfirmation is a free-form confirmation for kinds the schema
// doesn't otherwise model.
type OtherConfirmation struct {
	Description string `json:"description"`
}
