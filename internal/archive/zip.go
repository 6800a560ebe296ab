// Package archive unpacks uploaded project archives.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrTooLarge is returned when an archive expands past the size limit.
var ErrTooLarge = eris.New("zip: archive exceeds size limit")

// ExtractZIP extracts the files of a ZIP archive into destDir and returns
// their paths. macOS resource forks and hidden entries are skipped. A
// positive maxBytes caps the total uncompressed size.
func ExtractZIP(zipPath, destDir string, maxBytes int64) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var (
		extracted []string
		written   int64
	)
	for _, f := range r.File {
		if skipEntry(f.Name) {
			continue
		}
		budget := int64(-1)
		if maxBytes > 0 {
			budget = maxBytes - written
		}
		path, n, err := extractZIPEntry(f, destDir, budget)
		if err != nil {
			return extracted, err
		}
		written += n
		if path != "" {
			extracted = append(extracted, path)
		}
	}

	return extracted, nil
}

func skipEntry(name string) bool {
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == "__MACOSX" || (strings.HasPrefix(part, ".") && part != "." && part != "..") {
			return true
		}
	}
	return false
}

// extractZIPEntry extracts a single zip.File to the destination directory.
// Returns the extracted file path, or empty string for directories. A
// negative budget means no limit.
func extractZIPEntry(f *zip.File, destDir string, budget int64) (string, int64, error) {
	// Sanitize against zip slip
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", 0, eris.Errorf("zip: illegal path %q (zip slip attempt)", f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return "", 0, eris.Wrap(err, "zip: create directory")
		}
		return "", 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", 0, eris.Wrap(err, "zip: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", 0, eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", 0, eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	var src io.Reader = rc
	if budget >= 0 {
		// one extra byte tells an exact fit from an overflow
		src = io.LimitReader(rc, budget+1)
	}
	n, err := io.Copy(out, src)
	if err != nil {
		return "", n, eris.Wrap(err, "zip: write file")
	}
	if budget >= 0 && n > budget {
		return "", n, ErrTooLarge
	}

	return destPath, n, nil
}

// ProjectRoot descends through folders that are the only visible entry of
// their parent, so an archive holding "PROJECT/..." yields dir/PROJECT.
func ProjectRoot(dir string) (string, error) {
	for {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", eris.Wrap(err, "zip: read directory")
		}
		var visible []os.DirEntry
		for _, e := range entries {
			if !skipEntry(e.Name()) {
				visible = append(visible, e)
			}
		}
		if len(visible) != 1 || !visible[0].IsDir() {
			return dir, nil
		}
		dir = filepath.Join(dir, visible[0].Name())
	}
}
