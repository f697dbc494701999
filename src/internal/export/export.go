// Package export writes query results to files in several encodings,
// optionally compressed.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"bvbrcdata/src/internal/dataquery"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatNDJSON  Format = "ndjson"
	FormatYAML    Format = "yaml"
	FormatMsgPack Format = "msgpack"
)

type Compression string

const (
	CompressNone Compression = ""
	CompressGzip Compression = "gzip"
	CompressZstd Compression = "zstd"
)

// Options select the encoding and compression of an export.
type Options struct {
	Format      Format
	Compression Compression
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mpk":
		return FormatMsgPack, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ParseCompression accepts "", "none", "gzip"/"gz" and "zstd"/"zst".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressNone, nil
	case "gzip", "gz":
		return CompressGzip, nil
	case "zstd", "zst":
		return CompressZstd, nil
	}
	return "", fmt.Errorf("unknown compression %q", s)
}

// Infer derives options from a file name such as results.ndjson.zst.
// Unknown extensions fall back to uncompressed JSON.
func Infer(path string) Options {
	name := strings.ToLower(filepath.Base(path))
	var o Options
	switch ext := filepath.Ext(name); ext {
	case ".gz":
		o.Compression = CompressGzip
		name = strings.TrimSuffix(name, ext)
	case ".zst":
		o.Compression = CompressZstd
		name = strings.TrimSuffix(name, ext)
	}
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(name), ".")); err == nil {
		o.Format = f
	} else {
		o.Format = FormatJSON
	}
	return o
}

// Write encodes res to w. JSON, YAML and msgpack carry the whole result;
// NDJSON writes one record per line.
func Write(w io.Writer, res *dataquery.Result, opts Options) (err error) {
	if res == nil {
		return fmt.Errorf("export: nil result")
	}
	out, closeFn, err := compress(w, opts.Compression)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("export: close %s: %w", opts.Compression, cerr)
		}
	}()
	bw := bufio.NewWriter(out)
	if err := encode(bw, res, opts.Format); err != nil {
		return err
	}
	return bw.Flush()
}

func encode(w io.Writer, res *dataquery.Result, f Format) error {
	switch f {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatNDJSON:
		enc := json.NewEncoder(w)
		for _, r := range res.Records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("export ndjson: %w", err)
			}
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("export yaml: %w", err)
		}
		return enc.Close()
	case FormatMsgPack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("export msgpack: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown export format %q", f)
}

func compress(w io.Writer, c Compression) (io.Writer, func() error, error) {
	switch c {
	case CompressNone:
		return w, func() error { return nil }, nil
	case CompressGzip:
		gz := gzip.NewWriter(w)
		return gz, gz.Close, nil
	case CompressZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		return enc, enc.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown compression %q", c)
}

// WriteFile writes res to path, creating parent directories. A partially
// written file is removed on error.
func WriteFile(path string, res *dataquery.Result, opts Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, res, opts); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
