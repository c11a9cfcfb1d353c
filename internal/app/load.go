package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/fsutil"
	"github.com/specialistvlad/pyslotgen/internal/model"
)

// findManifests resolves the configured paths into manifest files.
func (a *App) findManifests(ctx context.Context) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := fsutil.FindFiles(a.config.Paths, model.ManifestExtension)
	if err != nil {
		return nil, fmt.Errorf("failed to find manifests: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %v", model.ManifestExtension, a.config.Paths)
	}
	logger.Debug("Manifests found.", "count", len(files))
	return files, nil
}

// loadManifest parses one manifest file. The returned files feed the
// diagnostics printer; the manifest is nil when the file could not be read
// at all.
func loadManifest(ctx context.Context, path string) (*model.Manifest, map[string]*hcl.File, hcl.Diagnostics) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, parser.Files(), diags
	}

	manifest, parseDiags := model.ParseManifestFile(ctx, file, path)
	return manifest, parser.Files(), append(diags, parseDiags...)
}
