package acp

import "encoding/json"

// MethodDescriptor names one entry in a [Registry]'s catalog, for use by
// external collaborators such as a JSON Schema generator (spec §4.3's
// "iteration order over {name, request_type_name, response_type_name}").
type MethodDescriptor struct {
	Name         string
	RequestType  string
	ResponseType string
}

// AnyRequest is a decoded, still-polymorphic request value: one variant of
// a role's closed request sum type (spec §3 "Any-request ... sum types").
type AnyRequest interface {
	// Method returns the wire method name for this variant.
	Method() string
}

// AnyResponse is a decoded, still-polymorphic response value: one variant
// of a role's closed response sum type.
type AnyResponse interface {
	// Method returns the wire method name this response answers.
	Method() string
}

// Registry is the per-role method catalog from spec §4.3: a closed,
// ordered table of (method name, request type, response type) triples,
// able to decode raw JSON into the typed sum for either direction.
//
// A Conn is parameterized by two Registries: one for the methods it sends
// (used to decode responses, since the method name tells it which response
// shape to expect) and one for the methods it receives (used to decode
// incoming requests before handing them to a [HandlerFunc]).
type Registry interface {
	// DecodeRequest decodes raw JSON params for method into the registry's
	// AnyRequest sum. Returns ErrUnknownMethod if method isn't registered.
	DecodeRequest(method string, raw json.RawMessage) (AnyRequest, error)

	// DecodeResponse decodes raw JSON result for method into the
	// registry's AnyResponse sum. Returns ErrUnknownMethod if method isn't
	// registered.
	DecodeResponse(method string, raw json.RawMessage) (AnyResponse, error)

	// Methods returns the registry's catalog in declaration order.
	Methods() []MethodDescriptor
}
