package rpc

import (
	"encoding/json"
	"errors"
)

// Wire types for the line-delimited RPC protocol. Every message is one JSON
// object on one line. Results travel as strings with an out-of-band type tag
// in result_type telling the caller how to reinterpret them.

// Request represents one incoming RPC request.
type Request struct {
	Method string `json:"method"`
	// Params is left raw; each method performs its own shape extraction.
	Params json.RawMessage `json:"params"`
	// ParamTypes is carried for documentation only and is not used by dispatch.
	ParamTypes []string `json:"param_types,omitempty"`
	ID         uint64   `json:"id"`
}

// Response represents a successful RPC response.
type Response struct {
	Result     string `json:"result"`
	ResultType string `json:"result_type"`
	ID         uint64 `json:"id"`
}

// ErrorResponse represents a failed RPC response.
type ErrorResponse struct {
	Err *Error `json:"error"`
	ID  uint64 `json:"id"`
}

// Error is the error object embedded in an ErrorResponse.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Error codes.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
)

// Result type tags.
const (
	TypeInt    = "int"
	TypeDouble = "double"
	TypeString = "string"
	TypeBool   = "bool"
)

func ErrMethodNotFound() *Error {
	return &Error{Code: CodeMethodNotFound, Message: "Method not found"}
}

func ErrInvalidParams() *Error {
	return &Error{Code: CodeInvalidParams, Message: "Invalid params"}
}

// ErrMalformedRequest is returned by DecodeRequest for every parse or shape
// failure. Callers cannot distinguish invalid JSON from a well-formed object
// of the wrong shape; both collapse to the same error on the wire.
var ErrMalformedRequest = errors.New("malformed request")

// DecodeRequest parses one line into a Request. Decoding is strict: the
// payload must be a JSON object carrying a string method, a non-negative
// integer id, and a params field of any shape. param_types, when present,
// must be an array of strings.
func DecodeRequest(line []byte) (*Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, ErrMalformedRequest
	}

	rawMethod, ok := fields["method"]
	if !ok {
		return nil, ErrMalformedRequest
	}
	rawID, ok := fields["id"]
	if !ok {
		return nil, ErrMalformedRequest
	}
	params, ok := fields["params"]
	if !ok {
		return nil, ErrMalformedRequest
	}

	// Pointers distinguish JSON null from a missing value; null is rejected
	// for both method and id.
	var method *string
	if err := json.Unmarshal(rawMethod, &method); err != nil || method == nil {
		return nil, ErrMalformedRequest
	}
	var id *uint64
	if err := json.Unmarshal(rawID, &id); err != nil || id == nil {
		return nil, ErrMalformedRequest
	}

	req := &Request{Method: *method, Params: params, ID: *id}
	if rawTypes, ok := fields["param_types"]; ok {
		if err := json.Unmarshal(rawTypes, &req.ParamTypes); err != nil {
			return nil, ErrMalformedRequest
		}
	}
	return req, nil
}
