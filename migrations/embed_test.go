package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_UpAndDownPaired(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(FS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestFS_RefreshTokensAfterInterns(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)

	require.Len(t, ups, 2)
	assert.Contains(t, ups[0], "interns")
	assert.Contains(t, ups[1], "refresh_tokens")

	schema, err := fs.ReadFile(FS, ups[1])
	require.NoError(t, err)
	assert.Contains(t, string(schema), "ON DELETE CASCADE")
}
