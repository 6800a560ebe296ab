package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/residential-checks/internal/classify"
)

// outputDir is skipped during discovery so reports from earlier runs are
// never read back as input.
const outputDir = "output"

// Discover lists the documents and workbooks under root in lexical order.
// Generated reports (*Checks*.xlsx), anything under an output folder and
// hidden entries are skipped.
func Discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.EqualFold(name, outputDir) || hidden(name)) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden(name) || !accepted(name) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: walk input folder")
	}
	return paths, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || name == "__MACOSX"
}

func accepted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range classify.SpreadsheetExtensions {
		if ext == e {
			return !strings.Contains(strings.ToUpper(name), "CHECKS")
		}
	}
	for _, e := range classify.DocumentExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ProjectName is the base name of the project folder.
func ProjectName(root string) string {
	return filepath.Base(filepath.Clean(root))
}
