package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/gridbind/internal/ctxlog"
	"github.com/specialistvlad/gridbind/internal/fsutil"
	"github.com/specialistvlad/gridbind/internal/schema"
)

// LoadManifests reads every .hcl schema manifest under path. A manifest
// named `s3_session.hcl` describes the units registered as s3_session.
func (r *Registry) LoadManifests(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading manifests...", "path", path)

	filePaths, err := fsutil.FindFiles(path, ".hcl")
	if err != nil {
		logger.Error("Failed to walk manifests directory", "path", path, "error", err)
		return err
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl manifest files found in path", "path", path)
		return nil
	}
	logger.Debug("Found HCL files to load", "files", filePaths)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, filePath := range filePaths {
		s, diags := schema.LoadFile(filePath)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse manifest %s: %w", filePath, diags)
		}
		name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		if prev, ok := r.manifests[name]; ok {
			return fmt.Errorf("manifest %s: %q is already described by %s", filePath, name, prev.path)
		}
		r.manifests[name] = manifest{path: filePath, schema: s}
		logger.Debug("Successfully loaded manifest", "file", filePath, "unit", name)
	}

	logger.Info("Registry manifests loaded successfully.", "manifests_loaded", len(filePaths))
	return nil
}
