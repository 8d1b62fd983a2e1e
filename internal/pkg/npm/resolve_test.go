package npm_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ozacod/zapi/internal/pkg/artifact"
	"github.com/ozacod/zapi/internal/pkg/npm"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	root, b := loadRoot(t)
	dir := t.TempDir()
	calls := 0
	host := func() (target.Target, error) {
		calls++
		return target.X8664LinuxMusl, nil
	}

	res, err := npm.Resolve(dir, root, b, host)
	require.NoError(t, err)
	assert.Empty(t, res.Local)
	assert.Equal(t, "my-addon-x86_64-unknown-linux-musl", res.String())
	assert.Equal(t, target.X8664LinuxMusl, res.Target)
	assert.Equal(t, 1, calls)

	local := artifact.BuildOutput(dir, "addon")
	require.NoError(t, os.MkdirAll(filepath.Dir(local), 0755))
	require.NoError(t, os.WriteFile(local, []byte("bin"), 0644))

	res, err = npm.Resolve(dir, root, b, host)
	require.NoError(t, err)
	assert.Equal(t, local, res.String())
	assert.Equal(t, 1, calls, "host detection is skipped when a local build exists")
}

func TestResolveUnsupportedHost(t *testing.T) {
	root, b := loadRoot(t)
	boom := errors.New("unsupported platform")

	_, err := npm.Resolve(t.TempDir(), root, b, func() (target.Target, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}
