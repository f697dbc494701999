// Package mcp serves the tool registry over the Model Context Protocol:
// JSON-RPC 2.0 on stdio or HTTP.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"bvbrcdata/src/internal/tools"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "BV-BRC Data MCP Server"
	jsonrpcVersion  = "2.0"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is a JSON-RPC request or notification. Notifications have no id.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool { return len(r.ID) == 0 }

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolCallResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError"`
}

// Server answers MCP requests from a tool registry.
type Server struct {
	reg     *tools.Registry
	version string
	logger  *slog.Logger
}

type Option func(*Server)

// WithVersion sets the version reported in serverInfo.
func WithVersion(v string) Option { return func(s *Server) { s.version = v } }

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

func NewServer(reg *tools.Registry, opts ...Option) *Server {
	s := &Server{reg: reg, version: "dev", logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Registry returns the tools the server dispatches to.
func (s *Server) Registry() *tools.Registry { return s.reg }

// HandleMessage decodes one JSON-RPC message and returns the encoded
// response, or nil when the message was a notification.
func (s *Server) HandleMessage(ctx context.Context, data []byte) []byte {
	data = bytes.TrimSpace(data)
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return encode(errorResponse(nil, CodeParseError, "parse error: "+err.Error()))
	}
	resp := s.Handle(ctx, &req)
	if resp == nil {
		return nil
	}
	return encode(resp)
}

// Handle dispatches a decoded request. It returns nil for notifications.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != jsonrpcVersion || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return errorResponse(req.ID, CodeInvalidRequest, "invalid request")
	}
	if req.IsNotification() {
		s.logger.Debug("mcp notification", "method", req.Method)
		return nil
	}
	result, err := s.dispatch(ctx, req)
	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			return errorResponse(req.ID, rpcErr.Code, rpcErr.Message)
		}
		return errorResponse(req.ID, CodeInternalError, err.Error())
	}
	return &Response{JSONRPC: jsonrpcVersion, ID: req.ID, Result: result}
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, error) {
	switch req.Method {
	case "initialize":
		return map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{"listChanged": false}},
			"serverInfo":      map[string]any{"name": ServerName, "version": s.version},
		}, nil
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return map[string]any{"tools": s.reg.Tools()}, nil
	case "tools/call":
		var p toolCallParams
		if len(req.Params) == 0 || json.Unmarshal(req.Params, &p) != nil || strings.TrimSpace(p.Name) == "" {
			return nil, &Error{Code: CodeInvalidParams, Message: "invalid params: expected {name, arguments}"}
		}
		res, err := s.reg.Call(ctx, p.Name, p.Arguments)
		if errors.Is(err, tools.ErrUnknownTool) {
			return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
		}
		if err != nil {
			return nil, err
		}
		return toolCallResult{Content: []textContent{{Type: "text", Text: res.Text}}, IsError: res.IsError}, nil
	}
	return nil, &Error{Code: CodeMethodNotFound, Message: "method not found: " + req.Method}
}

func errorResponse(id json.RawMessage, code int, msg string) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Error: &Error{Code: code, Message: msg}}
}

func encode(resp *Response) []byte {
	b, err := json.Marshal(resp)
	if err != nil {
		b, _ = json.Marshal(errorResponse(resp.ID, CodeInternalError, err.Error()))
	}
	return b
}
