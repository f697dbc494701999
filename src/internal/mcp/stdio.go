package mcp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

const maxMessage = 16 << 20

// ServeStdio reads newline-delimited JSON-RPC messages from r and writes one
// response line per request to w. It returns when r is exhausted or ctx is done.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxMessage)
	bw := bufio.NewWriter(w)
	s.logger.Info("mcp stdio transport started", "server", ServerName)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		out := s.HandleMessage(ctx, line)
		if out == nil {
			continue
		}
		if _, err := bw.Write(append(out, '\n')); err != nil {
			return fmt.Errorf("mcp stdio: write: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("mcp stdio: flush: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("mcp stdio: read: %w", err)
	}
	return nil
}
