// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the FSInfo struct, which links a parsed manifest back to
// the file it came from. Generated files are written next to their manifest
// and named after it.
package model

import (
	"path/filepath"
	"strings"
)

// ManifestExtension is the suffix of manifest files.
const ManifestExtension = ".pyslots.hcl"

type FSInfo struct {
	FilePath string
}

func NewFSInfo(filePath string) *FSInfo {
	return &FSInfo{
		FilePath: filePath,
	}
}

// Dir returns the directory holding the manifest.
func (f *FSInfo) Dir() string {
	return filepath.Dir(f.FilePath)
}

// Stem returns the manifest file name without its extension.
func (f *FSInfo) Stem() string {
	base := filepath.Base(f.FilePath)
	if strings.HasSuffix(base, ManifestExtension) {
		return strings.TrimSuffix(base, ManifestExtension)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
