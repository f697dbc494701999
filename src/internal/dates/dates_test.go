package dates

import "testing"

func TestNormalizeSolrDate(t *testing.T) {
	cases := []struct {
		in    string
		upper bool
		want  string
	}{
		{"2020", false, "2020-01-01T00:00:00Z"},
		{"2020", true, "2020-12-31T23:59:59Z"},
		{"2021-02", true, "2021-02-28T23:59:59Z"},
		{"2021-03-04", false, "2021-03-04T00:00:00Z"},
		{"2021-03-04", true, "2021-03-04T23:59:59Z"},
		{"2021-03-04T05:06:07Z", true, "2021-03-04T05:06:07Z"},
		{"2021-03-04T05:06:07+02:00", false, "2021-03-04T03:06:07Z"},
		{"", false, "*"},
		{" * ", true, "*"},
		{"now-1year", false, "NOW-1YEAR"},
	}
	for _, c := range cases {
		got, err := NormalizeSolrDate(c.in, c.upper)
		if err != nil {
			t.Fatalf("NormalizeSolrDate(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("NormalizeSolrDate(%q, %v): want %q, got %q", c.in, c.upper, c.want, got)
		}
	}
}

func TestNormalizeSolrDateInvalid(t *testing.T) {
	if _, err := NormalizeSolrDate("last tuesday", false); err == nil {
		t.Fatalf("expected error for free text date")
	}
}
