package collectionscmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestListCollections(t *testing.T) {
	out, err := run(t)
	if err != nil {
		t.Fatalf("collections: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 35 || !strings.HasPrefix(lines[0], "collection") {
		t.Fatalf("table: %d lines\n%s", len(lines), out)
	}
	if !strings.Contains(out, "epitope_assay") || !strings.Contains(out, "delegate") {
		t.Fatalf("missing rows:\n%s", out)
	}
}

func TestShowCollection(t *testing.T) {
	out, err := run(t, "genome")
	if err != nil {
		t.Fatalf("collections genome: %v", err)
	}
	for _, want := range []string{"genome (delegate, key genome_id)", "bvbrc_genome_get_by_taxon_id", "bvbrc_genome_query_by_filters", "bvbrc_genome_get_all", "genome_id", "filters_json"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestShowCollectionJSON(t *testing.T) {
	out, err := run(t, "epitope", "--format", "json")
	if err != nil {
		t.Fatalf("collections epitope: %v", err)
	}
	var col struct {
		Name      string `json:"name"`
		Key       string `json:"key"`
		Accessors []struct {
			Name string `json:"name"`
		} `json:"accessors"`
	}
	if err := json.Unmarshal([]byte(out), &col); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if col.Name != "epitope" || col.Key != "epitope_id" || len(col.Accessors) == 0 {
		t.Fatalf("collection: %+v", col)
	}
}

func TestErrors(t *testing.T) {
	if _, err := run(t, "nope"); err == nil {
		t.Fatalf("expected error for unknown collection")
	}
	if _, err := run(t, "--format", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
