package rpc

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveLine(t *testing.T, input string) string {
	t.Helper()
	server := NewServer(NewDefaultRegistry(), nil)
	var out bytes.Buffer
	server.ServeStdio(strings.NewReader(input), &out)
	return out.String()
}

func decodeErrorResponse(t *testing.T, line string) *ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(line), &resp))
	require.NotNil(t, resp.Err)
	return &resp
}

func TestServer_Success(t *testing.T) {
	out := serveLine(t, `{"method":"floor","params":[3.7],"id":42}`+"\n")

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "3", resp.Result)
	assert.Equal(t, TypeInt, resp.ResultType)
	assert.Equal(t, uint64(42), resp.ID)
}

func TestServer_MethodNotFound(t *testing.T) {
	out := serveLine(t, `{"method":"nonexistent","params":[],"id":7}`+"\n")

	resp := decodeErrorResponse(t, out)
	assert.Equal(t, CodeMethodNotFound, resp.Err.Code)
	assert.Equal(t, "Method not found", resp.Err.Message)
	assert.Equal(t, uint64(7), resp.ID, "original id should be preserved")
}

func TestServer_MalformedJSON(t *testing.T) {
	out := serveLine(t, `{not valid json}`+"\n")

	resp := decodeErrorResponse(t, out)
	assert.Equal(t, CodeInvalidParams, resp.Err.Code)
	assert.Equal(t, "Invalid params", resp.Err.Message)
	assert.Equal(t, uint64(0), resp.ID, "no id is recoverable from a malformed request")
}

func TestServer_WrongShape(t *testing.T) {
	// Well-formed JSON of the wrong shape is indistinguishable from invalid
	// JSON on the wire.
	out := serveLine(t, `{"method":"floor","params":[3.7]}`+"\n")

	resp := decodeErrorResponse(t, out)
	assert.Equal(t, CodeInvalidParams, resp.Err.Code)
	assert.Equal(t, uint64(0), resp.ID)
}

func TestServer_InvalidParams_PreservesID(t *testing.T) {
	out := serveLine(t, `{"method":"floor","params":["not a number"],"id":9}`+"\n")

	resp := decodeErrorResponse(t, out)
	assert.Equal(t, CodeInvalidParams, resp.Err.Code)
	assert.Equal(t, "Invalid params", resp.Err.Message)
	assert.Equal(t, uint64(9), resp.ID)
}

func TestServer_SingleShot(t *testing.T) {
	// One request per connection: the second line is never read.
	input := `{"method":"floor","params":[1.5],"id":1}` + "\n" +
		`{"method":"floor","params":[2.5],"id":2}` + "\n"
	out := serveLine(t, input)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.Equal(t, uint64(1), resp.ID)
}

func TestServer_EmptyInput(t *testing.T) {
	out := serveLine(t, "")
	assert.Empty(t, out, "no response for a connection closed before a request")
}

func TestServer_FinalLineWithoutNewline(t *testing.T) {
	out := serveLine(t, `{"method":"reverse","params":["abc"],"id":3}`)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "cba", resp.Result)
}

func TestTransport_WriteResponse_AppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	transport := NewTransport(strings.NewReader(""), &buf)

	require.NoError(t, transport.WriteResponse(&Response{Result: "3", ResultType: TypeInt, ID: 1}))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Equal(t, 1, strings.Count(out, "\n"), "exactly one line terminator")
}

func TestUnixListener_EndToEnd(t *testing.T) {
	socketPath := tempSocketPath(t)

	listener, err := NewUnixListener(socketPath, NewServer(NewDefaultRegistry(), nil))
	require.NoError(t, err)
	defer listener.Close() //nolint:errcheck
	go listener.Serve()    //nolint:errcheck

	client := NewUnixClient(socketPath)

	resp, errResp, err := client.Call("nroot", []any{2, 16}, 5)
	require.NoError(t, err)
	require.Nil(t, errResp)
	assert.Equal(t, "4", resp.Result)
	assert.Equal(t, TypeDouble, resp.ResultType)
	assert.Equal(t, uint64(5), resp.ID)

	// Each call is a fresh connection; the server keeps accepting.
	resp, errResp, err = client.Call("nonexistent", []any{}, 6)
	require.NoError(t, err)
	require.Nil(t, resp)
	require.NotNil(t, errResp)
	assert.Equal(t, CodeMethodNotFound, errResp.Err.Code)
	assert.Equal(t, uint64(6), errResp.ID)
}

func TestUnixListener_RemovesStaleSocket(t *testing.T) {
	socketPath := tempSocketPath(t)
	require.NoError(t, os.WriteFile(socketPath, nil, 0o600))

	listener, err := NewUnixListener(socketPath, NewServer(NewDefaultRegistry(), nil))
	require.NoError(t, err)
	listener.Close() //nolint:errcheck
}

func TestTCPListener_EndToEnd(t *testing.T) {
	listener, err := NewTCPListener("127.0.0.1:0", NewServer(NewDefaultRegistry(), nil))
	require.NoError(t, err)
	defer listener.Close() //nolint:errcheck
	go listener.Serve()    //nolint:errcheck

	client := NewTCPClient(listener.Addr().String())

	resp, errResp, err := client.Call("valid_anagram", []any{"listen", "silent"}, 1)
	require.NoError(t, err)
	require.Nil(t, errResp)
	assert.Equal(t, "true", resp.Result)
	assert.Equal(t, TypeBool, resp.ResultType)
}

// tempSocketPath returns a socket path short enough for sun_path.
func tempSocketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "calcd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) }) //nolint:errcheck
	return filepath.Join(dir, "rpc.sock")
}
