package runconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/gridbind/internal/ctxlog"
	"github.com/specialistvlad/gridbind/internal/fsutil"
)

// Extensions accepted by Load.
var Extensions = []string{".hcl", ".yaml", ".yml"}

// Parse parses a run configuration, picking the format from the filename
// extension.
func Parse(src []byte, filename string) (*Config, error) {
	switch filepath.Ext(filename) {
	case ".hcl":
		cfg, diags := ParseHCL(src, filename)
		if diags.HasErrors() {
			return nil, diags
		}
		return cfg, nil
	case ".yaml", ".yml":
		return ParseYAML(src, filename)
	default:
		return nil, fmt.Errorf("%s: unsupported run configuration format", filename)
	}
}

// Load reads every run configuration file under the given paths, in order,
// and merges them. Directories are walked recursively in lexical order.
func Load(ctx context.Context, paths ...string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)

	configs := make([]*Config, 0, len(paths))
	for _, root := range paths {
		files, err := fsutil.FindFiles(root, Extensions...)
		if err != nil {
			return nil, fmt.Errorf("finding run configuration in %s: %w", root, err)
		}
		for _, path := range files {
			logger.Debug("Loading run configuration file.", "path", path)
			src, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			cfg, err := Parse(src, path)
			if err != nil {
				return nil, err
			}
			configs = append(configs, cfg)
		}
	}
	logger.Debug("Run configuration loaded.", "files", len(configs))
	return Merge(configs...), nil
}
