package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetLiterals(t *testing.T) {
	ctx := context.Background()

	addr, err := ParseTarget(ctx, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", addr.String())

	addr, err = ParseTarget(ctx, "  10.1.2.3\t")
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", addr.String())

	addr, err = ParseTarget(ctx, "::1")
	require.NoError(t, err)
	assert.True(t, addr.Is6())
}

func TestParseTargetInvalid(t *testing.T) {
	ctx := context.Background()
	for _, s := range []string{"", "   ", "10.0.0.0/24", "127.0.0.1:80", "not a host", "300.1.1.1/8"} {
		_, err := ParseTarget(ctx, s)
		assert.Error(t, err, "target %q", s)
	}
}

func TestParseTargetHostname(t *testing.T) {
	addr, err := ParseTarget(context.Background(), "localhost")
	if err != nil {
		t.Skipf("localhost not resolvable here: %v", err)
	}
	assert.True(t, addr.IsLoopback())
}

func TestReadTargetLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("127.0.0.1\n\nbad-host!\n::1\n"), 0644))

	lines, errc, err := ReadTargetLines(context.Background(), path)
	require.NoError(t, err)

	var got []TargetLine
	for l := range lines {
		got = append(got, l)
	}
	require.NoError(t, <-errc)

	// 空行与非法行不过滤
	assert.Equal(t, []TargetLine{
		{Num: 1, Raw: "127.0.0.1"},
		{Num: 2, Raw: ""},
		{Num: 3, Raw: "bad-host!"},
		{Num: 4, Raw: "::1"},
	}, got)
}

func TestReadTargetLinesMissingFile(t *testing.T) {
	_, _, err := ReadTargetLines(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
