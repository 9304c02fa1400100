package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// Client performs single-shot calls against a running server. Each call opens
// a fresh connection, sends one request line, and reads one response line;
// the server closes the connection after responding.
type Client struct {
	network string
	addr    string
}

// NewUnixClient creates a client for a unix domain socket.
func NewUnixClient(path string) *Client {
	return &Client{network: "unix", addr: path}
}

// NewTCPClient creates a client for a TCP address.
func NewTCPClient(addr string) *Client {
	return &Client{network: "tcp", addr: addr}
}

// Call invokes method with the given positional params. It returns either the
// success response or the error response from the server; the error return is
// reserved for transport and encoding failures.
func (c *Client) Call(method string, params any, id uint64) (*Response, *ErrorResponse, error) {
	conn, err := net.Dial(c.network, c.addr)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s: %w", c.addr, err)
	}
	defer conn.Close() //nolint:errcheck

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding params: %w", err)
	}

	transport := NewTransport(conn, conn)
	if err := transport.WriteRequest(&Request{Method: method, Params: raw, ID: id}); err != nil {
		return nil, nil, fmt.Errorf("sending request: %w", err)
	}

	line, err := transport.ReadLine()
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}

	// The two wire shapes are distinguished by which key is present.
	var probe struct {
		Result     *string `json:"result"`
		ResultType string  `json:"result_type"`
		Err        *Error  `json:"error"`
		ID         uint64  `json:"id"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, nil, fmt.Errorf("decoding response: %w", err)
	}
	switch {
	case probe.Err != nil:
		return nil, &ErrorResponse{Err: probe.Err, ID: probe.ID}, nil
	case probe.Result != nil:
		return &Response{Result: *probe.Result, ResultType: probe.ResultType, ID: probe.ID}, nil, nil
	}
	return nil, nil, errors.New("response has neither result nor error")
}
