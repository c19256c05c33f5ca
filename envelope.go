package acp

import "encoding/json"

// ID is a correlation id: a signed 32-bit integer allocated per outgoing
// request from a per-connection counter starting at zero (spec §3).
type ID int32

// Kind classifies a decoded envelope.
type Kind int

const (
	// KindRequest is an envelope with a non-empty "method" field.
	KindRequest Kind = iota
	// KindSuccess is an envelope with neither "method" nor "error".
	KindSuccess
	// KindError is an envelope with no "method" and a non-nil "error".
	KindError
)

// wireEnvelope is the union of all three envelope shapes on the wire
// (spec §3). Discrimination is by field presence, not by a type tag.
type wireEnvelope struct {
	ID     *ID             `json:"id"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

// wireError is the ACP wire error shape: {"code": i32, "message": string}.
type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// envelope is a parsed, not-yet-typed frame: the classified [Kind] plus its
// raw-JSON child, deferred to the method registry for typed decode (spec
// §4.2 "Deferring typed decode to layer 3 lets the engine log and skip a
// single malformed payload without killing the connection").
type envelope struct {
	kind    Kind
	id      ID
	method  string          // set iff kind == KindRequest
	params  json.RawMessage // set iff kind == KindRequest
	result  json.RawMessage // set iff kind == KindSuccess
	rpcErr  *wireError      // set iff kind == KindError
	hasID   bool
}

// parseEnvelope classifies one line of JSON per spec §3:
// a frame is a request iff it has a non-empty "method" field; else an error
// iff it has an "error" field; else a success response.
func parseEnvelope(raw []byte) (*envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	e := &envelope{hasID: w.ID != nil}
	if w.ID != nil {
		e.id = *w.ID
	}

	switch {
	case w.Method != "":
		e.kind = KindRequest
		e.method = w.Method
		e.params = w.Params
		if e.params == nil {
			e.params = json.RawMessage("null")
		}
	case w.Error != nil:
		e.kind = KindError
		e.rpcErr = w.Error
	default:
		e.kind = KindSuccess
		e.result = w.Result
	}
	return e, nil
}

// encodeRequest serializes an outgoing request envelope.
func encodeRequest(id ID, method string, params any) ([]byte, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEnvelope{ID: &id, Method: method, Params: raw})
}

// encodeSuccess serializes an outgoing success-response envelope.
func encodeSuccess(id ID, result any) ([]byte, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEnvelope{ID: &id, Result: raw})
}

// encodeError serializes an outgoing error-response envelope.
func encodeError(id ID, code int, message string) ([]byte, error) {
	return json.Marshal(wireEnvelope{ID: &id, Error: &wireError{Code: code, Message: message}})
}
