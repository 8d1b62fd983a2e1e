package npm

import (
	"os"
	"path/filepath"

	"github.com/ozacod/zapi/internal/pkg/artifact"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/ozacod/zapi/pkg/config"
	"github.com/pkg/errors"
)

// Resolution says where a loader would find the addon for the host. Local
// is set when a local build exists; otherwise Package names the target
// package for Target.
type Resolution struct {
	Local   string
	Package string
	Target  target.Target
}

// String returns the module a loader would require.
func (r Resolution) String() string {
	if r.Local != "" {
		return r.Local
	}
	return r.Package
}

// Resolve looks for a local build under dir/zig-out/lib first and otherwise
// names the published package for host. A local build wins even when it was
// built for another target.
func Resolve(dir string, root *config.Manifest, b *config.Build, host func() (target.Target, error)) (Resolution, error) {
	local := artifact.BuildOutput(dir, b.BinaryName)
	if _, err := os.Stat(local); err == nil {
		abs, err := filepath.Abs(local)
		if err != nil {
			return Resolution{}, errors.WithStack(err)
		}
		return Resolution{Local: abs}, nil
	}

	t, err := host()
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Package: TargetPackageName(root.Name(), t), Target: t}, nil
}
