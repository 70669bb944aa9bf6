package fsutil

import (
	"path/filepath"
	"strings"
)

// ReplaceExtension swaps the extension of the final path component for ext.
// Only the last '.' of the final component counts, so "a.b.ts" becomes
// "a.b.js" and "dir.v1/app" becomes "dir.v1/app.js". When the final
// component has no '.', ext is appended.
func ReplaceExtension(path, ext string) string {
	old := filepath.Ext(path)
	if old == "" {
		return path + ext
	}
	return strings.TrimSuffix(path, old) + ext
}
