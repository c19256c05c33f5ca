package acpschema

import (
	"encoding/json"
	"fmt"

	"github.com/dmora/acp"
)

// entrySpec is one row of a registry table: a method name plus closures
// that decode raw JSON into the concrete request/response types for that
// method. This is the Go-generics analogue of the Rust macro's generated
// match arms (spec §9 "a runtime registry that maps method strings to a
// pair of (decode, invoke) closures").
type entrySpec struct {
	descriptor acp.MethodDescriptor
	decodeReq  func(json.RawMessage) (acp.AnyRequest, error)
	decodeResp func(json.RawMessage) (acp.AnyResponse, error)
}

// method builds one entrySpec for a (name, request type, response type)
// triple. Req and Resp must be the concrete payload struct types, each
// implementing [acp.AnyRequest]/[acp.AnyResponse] via a Method() method.
func method[Req acp.AnyRequest, Resp acp.AnyResponse](name string) entrySpec {
	var reqZero Req
	var respZero Resp
	return entrySpec{
		descriptor: acp.MethodDescriptor{
			Name:         name,
			RequestType:  fmt.Sprintf("%T", reqZero),
			ResponseType: fmt.Sprintf("%T", respZero),
		},
		decodeReq: func(raw json.RawMessage) (acp.AnyRequest, error) {
			var v Req
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
		decodeResp: func(raw json.RawMessage) (acp.AnyResponse, error) {
			var v Resp
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// staticRegistry is an [acp.Registry] backed by a map built once from a
// literal table of entrySpecs.
type staticRegistry struct {
	byName map[string]entrySpec
	order  []acp.MethodDescriptor
}

func newRegistry(entries ...entrySpec) *staticRegistry {
	r := &staticRegistry{byName: make(map[string]entrySpec, len(entries))}
	for _, e := range entries {
		if _, dup := r.byName[e.descriptor.Name]; dup {
			panic(fmt.Errorf("%w: %s", acp.ErrDuplicateMethod, e.descriptor.Name))
		}
		r.byName[e.descriptor.Name] = e
		r.order = append(r.order, e.descriptor)
	}
	return r
}

func (r *staticRegistry) DecodeRequest(methodName string, raw json.RawMessage) (acp.AnyRequest, error) {
	e, ok := r.byName[methodName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", acp.ErrUnknownMethod, methodName)
	}
	return e.decodeReq(raw)
}

func (r *staticRegistry) DecodeResponse(methodName string, raw json.RawMessage) (acp.AnyResponse, error) {
	e, ok := r.byName[methodName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", acp.ErrUnknownMethod, methodName)
	}
	return e.decodeResp(raw)
}

func (r *staticRegistry) Methods() []acp.MethodDescriptor {
	return append([]acp.MethodDescriptor(nil), r.order...)
}
