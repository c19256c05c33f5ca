// Package acpschema is the concrete Agent Client Protocol method catalog and
// payload schema (spec §6): the closed set of agent methods (client-
// initiated) and client methods (agent-initiated), their request/response
// payload shapes, and the two [acp.Registry] implementations ([AgentMethods]
// and [ClientMethods]) that make generic dispatch in package acp possible.
//
// Every exported struct here is the JSON-wire shape — field tags are
// camelCase regardless of the Go identifier's style, per spec §6.
package acpschema
