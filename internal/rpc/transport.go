package rpc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
)

// Transport reads request lines and writes response lines over a byte stream.
type Transport struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
}

// NewTransport wraps an io.Reader and io.Writer as an RPC transport.
// Each message is a single line of UTF-8 text terminated by newline.
func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// ReadLine reads one newline-terminated line. A final line that ends at EOF
// without its terminator is still delivered; a bare EOF is returned as io.EOF.
func (t *Transport) ReadLine() ([]byte, error) {
	line, err := t.reader.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return line, nil
		}
		return nil, err
	}
	return line, nil
}

// WriteResponse serializes a success or error response and appends exactly
// one line terminator.
func (t *Transport) WriteResponse(resp any) error {
	return t.writeLine(resp)
}

// WriteRequest serializes a request and appends exactly one line terminator.
func (t *Transport) WriteRequest(req *Request) error {
	return t.writeLine(req)
}

func (t *Transport) writeLine(v any) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = t.writer.Write(data)
	return err
}

// UnixListener listens on a unix domain socket and serves each accepted
// connection with the given server.
type UnixListener struct {
	listener net.Listener
	server   *Server
}

// NewUnixListener binds a unix domain socket at path. A stale socket file
// left behind by a previous run is removed before binding.
func NewUnixListener(path string, server *Server) (*UnixListener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("removing stale socket %s: %w", path, err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", path, err)
	}
	return &UnixListener{listener: ln, server: server}, nil
}

// Addr returns the listener's socket address.
func (ul *UnixListener) Addr() net.Addr {
	return ul.listener.Addr()
}

// Serve accepts connections in a loop. Each connection is handled in its own
// goroutine for one request/response cycle and then closed. Serve blocks
// until the listener is closed.
func (ul *UnixListener) Serve() error {
	return serveLoop(ul.listener, ul.server)
}

// Close shuts down the listener and removes the socket file.
func (ul *UnixListener) Close() error {
	return ul.listener.Close()
}

// TCPListener listens for TCP connections and serves each with the given
// server. Kept for debugging; the unix socket is the primary transport.
type TCPListener struct {
	listener net.Listener
	server   *Server
}

// NewTCPListener creates a TCP listener on the given address.
func NewTCPListener(addr string, server *Server) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return &TCPListener{listener: ln, server: server}, nil
}

// Addr returns the listener's network address.
func (tl *TCPListener) Addr() net.Addr {
	return tl.listener.Addr()
}

// Serve accepts connections in a loop. It blocks until the listener is closed.
func (tl *TCPListener) Serve() error {
	return serveLoop(tl.listener, tl.server)
}

// Close shuts down the TCP listener.
func (tl *TCPListener) Close() error {
	return tl.listener.Close()
}

// serveLoop accepts connections and hands each to its own goroutine. A
// failure on one connection never affects the listener or other connections.
func serveLoop(ln net.Listener, server *Server) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go func() {
			defer conn.Close() //nolint:errcheck
			transport := NewTransport(conn, conn)
			server.ServeTransport(transport)
		}()
	}
}
