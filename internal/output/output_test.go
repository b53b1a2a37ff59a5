package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-rarbg-cli/internal/scrape"
)

func bySeeders(counts ...int) []scrape.Record {
	records := make([]scrape.Record, len(counts))
	for i, n := range counts {
		records[i] = scrape.Record{Title: "r", Seeders: n}
	}
	return records
}

func seeders(records []scrape.Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Seeders
	}
	return out
}

func TestSortRecordsDescendingOnly(t *testing.T) {
	t.Parallel()

	records := bySeeders(5, 20, 1)
	SortRecords(records, "seeders")
	assert.Equal(t, []int{20, 5, 1}, seeders(records))
}

func TestSortRecordsKeys(t *testing.T) {
	t.Parallel()

	records := []scrape.Record{
		{Title: "alpha", Date: 3, SizeBytes: 100, Seeders: 1, Leechers: 9},
		{Title: "zulu", Date: 1, SizeBytes: 300, Seeders: 3, Leechers: 4},
		{Title: "mike", Date: 2, SizeBytes: 200, Seeders: 2, Leechers: 6},
	}

	tests := []struct {
		key  string
		want []string
	}{
		{"title", []string{"zulu", "mike", "alpha"}},
		{"date", []string{"alpha", "mike", "zulu"}},
		{"size", []string{"zulu", "mike", "alpha"}},
		{"seeders", []string{"zulu", "mike", "alpha"}},
		{"leechers", []string{"alpha", "mike", "zulu"}},
	}

	for _, tt := range tests {
		sorted := Project(records, tt.key, 0)
		got := make([]string, len(sorted))
		for i, r := range sorted {
			got[i] = r.Title
		}
		assert.Equal(t, tt.want, got, tt.key)
	}
}

func TestProjectSortThenLimit(t *testing.T) {
	t.Parallel()

	out := Project(bySeeders(5, 20, 1), "seeders", 2)
	assert.Equal(t, []int{20, 5}, seeders(out))

	// No sort key: original order, limit still applies.
	out = Project(bySeeders(5, 20, 1), "", 2)
	assert.Equal(t, []int{5, 20}, seeders(out))
}

func TestProjectLeavesInputAlone(t *testing.T) {
	t.Parallel()

	records := bySeeders(5, 20, 1)
	_ = Project(records, "seeders", 1)
	assert.Equal(t, []int{5, 20, 1}, seeders(records))
}

func TestRenderMagnetOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := &Presenter{Out: &buf, MagnetOnly: true}

	require.NoError(t, p.Render([]scrape.Record{
		{Magnet: "magnet:?xt=urn:btih:aa"},
		{Magnet: "magnet:?xt=urn:btih:bb"},
	}))

	assert.Equal(t, "magnet:?xt=urn:btih:aa\nmagnet:?xt=urn:btih:bb\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := &Presenter{Out: &buf}

	require.NoError(t, p.Render([]scrape.Record{
		{Title: "x", SizeBytes: 1_500_000_000, Category: scrape.CategoryMovies},
	}))

	var views []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "x", views[0]["title"])
	assert.Equal(t, "1.50 GB", views[0]["size"])
	assert.EqualValues(t, 1_500_000_000, views[0]["size_bytes"])
}

func TestRenderJSONFixedUnit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := &Presenter{Out: &buf, Unit: "MB"}

	require.NoError(t, p.Render([]scrape.Record{{SizeBytes: 1_500_000_000}}))
	assert.Contains(t, buf.String(), `"size": "1500.00 MB"`)
}

func TestOpenAllPacing(t *testing.T) {
	t.Parallel()

	var opened []string
	var slept int
	o := &Opener{
		open:  func(u string) error { opened = append(opened, u); return nil },
		sleep: func(time.Duration) { slept++ },
	}

	o.OpenAll([]string{"u1", "u2", "u3"})
	assert.Equal(t, []string{"u1", "u2", "u3"}, opened)
	assert.Zero(t, slept, "small batches are not paced")

	opened, slept = nil, 0
	o.OpenAll([]string{"u1", "u2", "u3", "u4", "u5", "u6", ""})
	assert.Len(t, opened, 6, "empty URLs skipped")
	assert.Equal(t, 6, slept)
}
