// Package mcp implements a minimal client for MCP servers speaking
// newline-delimited JSON-RPC over stdio.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Tool mirrors the tool metadata an MCP server advertises. Server is
// injected by the coordinator, not by the server itself.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
	Server      string         `json:"mcp_server,omitempty"`
}

const (
	// maxFrameBytes caps a single response frame so a misbehaving server
	// cannot grow the read buffer without bound.
	maxFrameBytes = 1 << 20

	// disconnectWait bounds how long Disconnect waits for a graceful exit
	// before killing the process.
	disconnectWait = 5 * time.Second
)

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Result  map[string]any `json:"result,omitempty"`
	Error   *rpcError      `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client manages one MCP server subprocess. All request/response
// exchange is serialized: the server is expected to answer each request
// with a single JSON line on stdout.
type Client struct {
	command string
	args    []string

	mu    sync.Mutex
	seq   int64
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   *bufio.Reader
	tools []Tool
}

func NewClient(command string, args ...string) *Client {
	return &Client{command: command, args: args}
}

// Connect starts the server process and performs the initialize
// handshake. Calling Connect on an already-connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stdin != nil {
		return nil
	}

	cmd := exec.Command(c.command, c.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to connect to MCP server: %v", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to connect to MCP server: %v", err)
	}
	// Keep stdout clean for JSON-RPC frames only.
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to connect to MCP server: %v", err)
	}

	c.cmd = cmd
	c.stdin = stdin
	c.out = bufio.NewReader(stdout)

	if _, err := c.send(ctx, "initialize", nil); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		c.teardown()
		return fmt.Errorf("failed to connect to MCP server: %v", err)
	}
	return nil
}

// send performs a full request/response roundtrip. The caller must hold
// c.mu; the shared reader makes interleaved roundtrips unsafe.
func (c *Client) send(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	if c.stdin == nil {
		return nil, errors.New("MCP server not connected")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.seq++
	req := rpcRequest{JSONRPC: "2.0", ID: c.seq, Method: method, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	payload = append(payload, '\n')
	if _, err := c.stdin.Write(payload); err != nil {
		return nil, fmt.Errorf("error communicating with MCP server: %v", err)
	}

	for {
		line, err := c.readFrame()
		if err != nil {
			return nil, fmt.Errorf("error communicating with MCP server: %v", err)
		}
		line = bytes.TrimSpace(line)
		// Skip log noise and notifications the server may interleave.
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var resp rpcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.ID != 0 && resp.ID != req.ID {
			continue
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("tool error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return resp.Result, nil
	}
}

func (c *Client) readFrame() ([]byte, error) {
	var buf bytes.Buffer
	for {
		frag, err := c.out.ReadBytes('\n')
		buf.Write(frag)
		if buf.Len() > maxFrameBytes {
			return nil, errors.New("response frame too large")
		}
		if err == nil {
			return buf.Bytes(), nil
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return nil, err
		}
	}
}

// ListTools returns the tools the server advertises. The list is cached
// after the first successful fetch; on failure it returns an empty list
// rather than an error, so one broken server never blocks planning.
func (c *Client) ListTools(ctx context.Context) []Tool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tools != nil {
		return c.tools
	}

	res, err := c.send(ctx, "tools/list", nil)
	if err != nil {
		log.Printf("Warning: could not list tools: %v", err)
		return nil
	}
	raw, ok := res["tools"].([]any)
	if !ok {
		return nil
	}

	tools := make([]Tool, 0, len(raw))
	for _, v := range raw {
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		var t Tool
		if err := json.Unmarshal(b, &t); err != nil {
			continue
		}
		tools = append(tools, t)
	}
	c.tools = tools
	return tools
}

// CallTool invokes a named tool and returns the raw result value.
func (c *Client) CallTool(ctx context.Context, name string, params map[string]any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.send(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": params,
	})
	if err != nil {
		return nil, fmt.Errorf("error calling tool %s: %v", name, err)
	}
	return res, nil
}

// Disconnect terminates the server process: graceful SIGTERM first, then
// a kill after a bounded wait. The client is reusable afterwards.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stdin == nil {
		return nil
	}
	_ = c.stdin.Close()

	if c.cmd != nil && c.cmd.Process != nil {
		done := make(chan error, 1)
		go func() { done <- c.cmd.Wait() }()

		_ = c.cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-done:
		case <-time.After(disconnectWait):
			_ = c.cmd.Process.Kill()
			<-done
		}
	}

	c.teardown()
	return nil
}

func (c *Client) teardown() {
	c.cmd = nil
	c.stdin = nil
	c.out = nil
	c.tools = nil
	c.seq = 0
}
