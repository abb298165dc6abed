package edinet

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks a downloaded ZIP (document types 1, 4 and 5) into
// destDir and returns the extracted file paths. Entries that would escape
// destDir are rejected.
func ExtractArchive(zipPath, destDir string) ([]string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer zr.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(entry.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return nil, fmt.Errorf("archive entry %q escapes %s", entry.Name, destDir)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, err
			}
			continue
		}

		if err := extractEntry(entry, target); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", entry.Name, err)
		}
		files = append(files, target)
	}

	return files, nil
}

func extractEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
