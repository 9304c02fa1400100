package rpc

import (
	"errors"
	"io"
	"log/slog"
)

// Server dispatches decoded requests against a method registry.
type Server struct {
	registry *MethodRegistry
	logger   *slog.Logger
}

// NewServer creates a server with the given method registry.
func NewServer(registry *MethodRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{registry: registry, logger: logger}
}

// ServeTransport drives exactly one decode, dispatch, encode, write cycle and
// returns. A connection carries a single request; clients wanting another
// round trip open a new connection.
//
// Transport-level read or write failures are logged and abandon the
// connection without a response. A request that cannot be decoded is answered
// with the invalid-params error and id 0, since no id is recoverable from the
// input.
func (s *Server) ServeTransport(t *Transport) {
	line, err := t.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.logger.Debug("connection closed before a request was sent")
		} else {
			s.logger.Debug("read error", "error", err)
		}
		return
	}

	req, err := DecodeRequest(line)
	if err != nil {
		s.logger.Debug("decode error", "error", err)
		s.write(t, &ErrorResponse{Err: ErrInvalidParams(), ID: 0})
		return
	}

	s.logger.Debug("request received", "method", req.Method, "id", req.ID)

	handler := s.registry.Lookup(req.Method)
	if handler == nil {
		s.write(t, &ErrorResponse{Err: ErrMethodNotFound(), ID: req.ID})
		return
	}

	result, resultType, rpcErr := handler(req.Params)
	if rpcErr != nil {
		s.write(t, &ErrorResponse{Err: rpcErr, ID: req.ID})
		return
	}

	s.write(t, &Response{Result: result, ResultType: resultType, ID: req.ID})
}

func (s *Server) write(t *Transport, resp any) {
	if err := t.WriteResponse(resp); err != nil {
		s.logger.Debug("write error", "error", err)
	}
}

// ServeStdio serves a single request over the given byte streams.
func (s *Server) ServeStdio(stdin io.Reader, stdout io.Writer) {
	transport := NewTransport(stdin, stdout)
	s.ServeTransport(transport)
}
