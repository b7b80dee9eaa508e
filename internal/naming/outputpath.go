// Package naming builds canonical output paths for produced bundles and
// records overwrite events when a run targets a path that already exists.
package naming

import (
	"fmt"
	"path/filepath"
)

// OutputPath builds the canonical bundle path for a document stem processed
// under a mode:
//
//	<outputDir>/<stem>_<engine>+<mode>.json
//
// The stem carries no directory component; the engine name defaults to the
// engine binary's name. The same inputs always produce the same path.
func OutputPath(outputDir, stem, engine, mode string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_%s+%s.json", stem, engine, mode))
}
