package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-rarbg-cli/internal/scrape"
)

func TestSignatureStable(t *testing.T) {
	t.Parallel()

	a := Signature("ubuntu iso", "software", "seeders", true, 10)
	b := Signature("ubuntu iso", "software", "seeders", true, 10)
	assert.Equal(t, a, b)
	assert.Equal(t, "category=software,descending=true,limit=10,order=seeders,search=ubuntu iso", a)
}

func TestSignatureIgnoresPresentationOnlyChanges(t *testing.T) {
	t.Parallel()

	// Sort and output flags are not part of the signature at all; only
	// the content-affecting parameters are inputs here.
	base := Signature("x", "", "", false, 0)
	assert.Equal(t, "category=,descending=false,limit=inf,order=,search=x", base)

	assert.NotEqual(t, base, Signature("y", "", "", false, 0))
	assert.NotEqual(t, base, Signature("x", "movies", "", false, 0))
	assert.NotEqual(t, base, Signature("x", "", "seeders", false, 0))
	assert.NotEqual(t, base, Signature("x", "", "", true, 0))
	assert.NotEqual(t, base, Signature("x", "", "", false, 5))
}

func TestSignatureCleansValues(t *testing.T) {
	t.Parallel()

	sig := Signature(`a "quoted", term`, "", "", false, 0)
	assert.NotContains(t, sig, `"`)
	assert.Equal(t, "category=,descending=false,limit=inf,order=,search=a quoted term", sig)
}

func TestFilenameSanitizesPathCharacters(t *testing.T) {
	t.Parallel()

	name := filename(Signature("path/../../etc", "", "", false, 0))
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, `\`)
}

func rec(title string, seeders int) scrape.Record {
	return scrape.Record{Title: title, Seeders: seeders, Category: scrape.CategoryUnknown}
}

func TestLoadNoHistory(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	assert.Nil(t, store.Load("sig", true))
}

func TestMergeAndLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	sig := Signature("x", "", "", false, 0)

	merged, err := store.Merge(sig, []scrape.Record{rec("a", 1), rec("b", 2)}, nil)
	require.NoError(t, err)
	require.Len(t, merged, 2)

	loaded := store.Load(sig, true)
	assert.Equal(t, merged, loaded)

	// Caching disabled: nothing comes back even though the file exists.
	assert.Nil(t, store.Load(sig, false))
}

func TestMergeDeduplicatesPreservingFirstSeenOrder(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	fresh := []scrape.Record{rec("b", 2), rec("a", 1)}
	existing := []scrape.Record{rec("a", 1), rec("c", 3)}

	merged, err := store.Merge("sig", fresh, existing)
	require.NoError(t, err)
	assert.Equal(t, []scrape.Record{rec("b", 2), rec("a", 1), rec("c", 3)}, merged)
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	once, err := store.Merge("sig", []scrape.Record{rec("a", 1)}, []scrape.Record{rec("b", 2)})
	require.NoError(t, err)

	twice, err := store.Merge("sig", once, nil)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestMergeKeepsResolvedMagnetDistinct(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	unresolved := rec("a", 1)
	resolved := unresolved
	resolved.Magnet = "magnet:?xt=urn:btih:ff"

	merged, err := store.Merge("sig", []scrape.Record{resolved}, []scrape.Record{unresolved})
	require.NoError(t, err)
	assert.Equal(t, []scrape.Record{resolved, unresolved}, merged)
}

func TestLoadCorruptMovesFileAside(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)
	sig := "sig"

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "history"), 0755))
	path := store.path(sig)
	require.NoError(t, os.WriteFile(path, []byte("[{broken"), 0644))

	assert.Nil(t, store.Load(sig, true))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".corrupt")
	assert.NoError(t, err)
}
