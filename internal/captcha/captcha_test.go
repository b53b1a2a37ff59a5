package captcha

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-rarbg-cli/internal/cookies"
)

type fakeResolver struct {
	jar cookies.Jar
	err error
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (cookies.Jar, error) {
	return f.jar, f.err
}

func TestChainFallsBack(t *testing.T) {
	t.Parallel()

	failing := &fakeResolver{err: errors.New("no browser")}
	working := &fakeResolver{jar: cookies.Jar{"sk": "1"}}

	jar, err := NewChain(failing, working).Resolve(context.Background(), "https://x/threat_defence.php")
	require.NoError(t, err)
	assert.Equal(t, cookies.Jar{"sk": "1"}, jar)
}

func TestChainAllFail(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := NewChain(&fakeResolver{err: boom}).Resolve(context.Background(), "u")

	var resolution *ResolutionError
	require.ErrorAs(t, err, &resolution)
	assert.ErrorIs(t, err, boom)
}

func TestChainEmpty(t *testing.T) {
	t.Parallel()

	_, err := NewChain().Resolve(context.Background(), "u")
	require.Error(t, err)
}

func TestManualResolverParsesPaste(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	in := strings.NewReader(`"tcc; gaDts48g=q8hppt; sk=ue7"` + "\n")

	jar, err := NewManualResolver(in, &out).Resolve(context.Background(), "https://x/threat_defence.php?r=1")
	require.NoError(t, err)
	assert.Equal(t, cookies.Jar{"gaDts48g": "q8hppt", "sk": "ue7"}, jar)

	// The prompt includes the challenge URL for the user to open.
	assert.Contains(t, out.String(), "threat_defence.php?r=1")
}

func TestManualResolverEmptyPaste(t *testing.T) {
	t.Parallel()

	_, err := NewManualResolver(strings.NewReader("\n"), &bytes.Buffer{}).
		Resolve(context.Background(), "u")
	require.Error(t, err)
}

func TestManualResolverEOF(t *testing.T) {
	t.Parallel()

	_, err := NewManualResolver(strings.NewReader(""), &bytes.Buffer{}).
		Resolve(context.Background(), "u")
	require.Error(t, err)
}

func TestParseScriptOutputJSON(t *testing.T) {
	t.Parallel()

	jar, err := parseScriptOutput(`{"sk": "abc", "tcc": ""}` + "\n")
	require.NoError(t, err)
	assert.Equal(t, cookies.Jar{"sk": "abc", "tcc": ""}, jar)
}

func TestParseScriptOutputHeader(t *testing.T) {
	t.Parallel()

	jar, err := parseScriptOutput("sk=abc; tcc=1\n")
	require.NoError(t, err)
	assert.Equal(t, cookies.Jar{"sk": "abc", "tcc": "1"}, jar)
}

func TestParseScriptOutputGarbage(t *testing.T) {
	t.Parallel()

	for _, out := range []string{"", "{broken", "no cookies here"} {
		_, err := parseScriptOutput(out)
		assert.Error(t, err, out)
	}
}
