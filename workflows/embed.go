// Package workflows embeds the default workflow definitions shipped with the service
package workflows

import (
	"embed"
	"io/fs"
)

//go:embed *.yaml
var defaults embed.FS

// Defaults returns the embedded workflow files
func Defaults() fs.FS {
	return defaults
}
