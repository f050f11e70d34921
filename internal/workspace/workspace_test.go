package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace_WriteAndClose(t *testing.T) {
	ws, err := New(t.TempDir())
	require.NoError(t, err)

	p1, err := ws.Write("dir/report.xlsx", strings.NewReader("one"))
	require.NoError(t, err)
	p2, err := ws.Write("other/report.xlsx", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2, "same base name must not collide")
	assert.Equal(t, ws.Dir(), filepath.Dir(p1))

	data, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	require.NoError(t, ws.Close())
	_, err = os.Stat(ws.Dir())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, ws.Close())

	_, err = ws.Write("late.xlsx", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestWorkspace_WriteStaysInside(t *testing.T) {
	ws, err := New(t.TempDir())
	require.NoError(t, err)
	defer ws.Close()

	for _, name := range []string{"../../etc/passwd", `..\..\evil.xlsx`, "..", "/"} {
		p, err := ws.Write(name, strings.NewReader("x"))
		require.NoError(t, err, name)
		assert.Equal(t, ws.Dir(), filepath.Dir(p), name)
	}
}
