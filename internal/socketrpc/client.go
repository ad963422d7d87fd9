package socketrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/tinytelemetry/starboard/internal/counter"
)

// ErrClientClosed is returned by calls made after Close.
var ErrClientClosed = errors.New("socketrpc: client closed")

const (
	defaultCallTimeout = 30 * time.Second
	dialTimeout        = 5 * time.Second
)

// Client reads the service counter over a Unix domain socket using JSON-RPC
// 2.0. It implements stars.Fetcher.
//
// A call interrupted mid-exchange leaves the stream in an unknown state, so
// the connection is dropped and the next call dials a fresh one.
type Client struct {
	socketPath string

	mu      sync.Mutex
	nextID  int
	closed  bool
	conn    net.Conn
	scanner *bufio.Scanner
	encoder *json.Encoder
}

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	c := &Client{socketPath: socketPath}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	c.conn = conn
	c.scanner = scanner
	c.encoder = json.NewEncoder(conn)
	return nil
}

// drop closes a connection that can no longer be trusted.
func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = nil
	c.scanner = nil
	c.encoder = nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.drop()
	return err
}

// call performs a JSON-RPC call and unmarshals the result into dest.
func (c *Client) call(ctx context.Context, method string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if c.closed {
		return ErrClientClosed
	}
	if c.conn == nil {
		if err := c.connect(); err != nil {
			return err
		}
	}

	c.nextID++
	id := c.nextID

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultCallTimeout)
	}
	c.conn.SetDeadline(deadline)

	conn := c.conn
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	req := Request{JSONRPC: "2.0", ID: id, Method: method}
	if err := c.encoder.Encode(req); err != nil {
		c.drop()
		return c.ioError(ctx, "send", err)
	}

	for {
		if !c.scanner.Scan() {
			err := c.scanner.Err()
			c.drop()
			if err == nil {
				return fmt.Errorf("socketrpc: connection closed")
			}
			return c.ioError(ctx, "read", err)
		}

		var resp Response
		if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
			c.drop()
			return fmt.Errorf("socketrpc: unmarshal response: %w", err)
		}
		if resp.ID != id {
			continue
		}

		conn.SetDeadline(time.Time{})
		if resp.Error != nil {
			return resp.Error
		}
		if dest != nil {
			if err := json.Unmarshal(resp.Result, dest); err != nil {
				return fmt.Errorf("socketrpc: unmarshal result: %w", err)
			}
		}
		return nil
	}
}

// ioError reports a cancelled or expired call as the matching context
// error, whichever fired first.
func (c *Client) ioError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return fmt.Errorf("socketrpc: %s: %w", op, err)
}

// FetchCount returns the service's current star count.
func (c *Client) FetchCount(ctx context.Context) (int64, error) {
	var result int64
	err := c.call(ctx, "StarCount", &result)
	return result, err
}

// Snapshot returns the service's counter state.
func (c *Client) Snapshot(ctx context.Context) (counter.State, error) {
	var result counter.State
	err := c.call(ctx, "Snapshot", &result)
	return result, err
}
