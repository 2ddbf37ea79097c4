package registry

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/fsutil"
)

// ManifestExt is the extension of node manifest files.
const ManifestExt = ".hcl"

// LoadManifestDir registers every manifest file below dir as a custom
// type. Each file is registered under its path and under its file name
// without the extension; a name that is already taken keeps its old
// descriptor. It returns the number of files found.
func (r *Registry) LoadManifestDir(ctx context.Context, dir string) (int, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading manifests from directory...", "path", dir)

	paths, err := fsutil.FindFilesByExtension(dir, ManifestExt)
	if err != nil {
		logger.Error("Failed to walk manifests directory", "path", dir, "error", err)
		return 0, err
	}
	if len(paths) == 0 {
		logger.Warn("No manifest files found in path", "path", dir)
		return 0, nil
	}

	for _, path := range paths {
		d := Custom(path)
		r.Ensure(path, d)

		short := strings.TrimSuffix(filepath.Base(path), ManifestExt)
		if existing, added := r.Ensure(short, d); !added && existing.URL != d.URL {
			logger.Warn("Manifest file name shadows an existing type, use its path instead.",
				"type", short, "file", path, "existing_url", existing.URL)
		}
	}

	logger.Info("Manifests registered.", "files", len(paths))
	return len(paths), nil
}
