package exportcmd

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bvbrcdata/src/internal/cliapp"
)

type onePageDoer struct{}

func (onePageDoer) Do(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	body := `{"response":{"docs":[]},"nextCursorMark":"c1"}`
	if strings.Contains(string(b), "cursorMark=%2A") {
		body = `{"response":{"docs":[{"id":"a"},{"id":"b"}]},"nextCursorMark":"c1"}`
	}
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body)), Header: make(http.Header)}, nil
}

func execExport(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cliapp.SetHTTPClient(onePageDoer{})
	t.Cleanup(func() { cliapp.SetHTTPClient(nil) })
	cmd := New()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestExportNDJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "strains.ndjson")
	msg, err := execExport(t, "all", "strain", "-o", out)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(msg, "wrote 2 record(s)") {
		t.Fatalf("message: %q", msg)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\"id\":\"a\"}\n{\"id\":\"b\"}\n" {
		t.Fatalf("ndjson: %q", b)
	}
}

func TestExportFormatFlagOverridesExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "strains.out")
	if _, err := execExport(t, "keyword", "strain", "H1N1", "-o", out, "--format", "yaml"); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, _ := os.ReadFile(out)
	if !strings.HasPrefix(string(b), "collection: strain\n") {
		t.Fatalf("yaml: %q", b)
	}
}

func TestExportErrors(t *testing.T) {
	if _, err := execExport(t, "all", "strain"); err == nil {
		t.Fatalf("expected error without --output")
	}
	out := filepath.Join(t.TempDir(), "x.json")
	if _, err := execExport(t, "all", "strain", "-o", out, "--compress", "lz4"); err == nil {
		t.Fatalf("expected error for unknown compression")
	}
}
