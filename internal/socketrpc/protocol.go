package socketrpc

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes the service's counter over a Unix domain
// socket, so local terminal pages can share one poller instead of each
// calling the GitHub API.
//
//   Method       Params    Result
//   ──────────   ──────    ──────────────────────────────
//   StarCount    (none)    int64
//   Snapshot     (none)    {Current: int64, Previous: int64}
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32603  Internal error (marshal failure)
//   -32000  Application error

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/starboard/starboard.sock, falling back to
// ~/.local/state/starboard/starboard.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "starboard", "starboard.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/starboard.sock"
	}
	return filepath.Join(home, ".local", "state", "starboard", "starboard.sock")
}
