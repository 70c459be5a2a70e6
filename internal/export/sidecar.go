package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// AttachmentDirs scans the export's parent directory for immediate
// subdirectories whose names are purely numeric. Each such directory marks
// its item id as having exported attachment files on disk.
func AttachmentDirs(csvPath string) (map[int]bool, error) {
	entries, err := os.ReadDir(filepath.Dir(csvPath))
	if err != nil {
		return nil, fmt.Errorf("failed to scan export directory: %w", err)
	}

	dirs := make(map[int]bool)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		dirs[id] = true
	}
	return dirs, nil
}

// SidecarPath returns the on-disk location of an exported attachment file,
// which lives in a directory named by item id next to the export itself.
func SidecarPath(csvPath string, id int, filename string) string {
	return filepath.Join(filepath.Dir(csvPath), strconv.Itoa(id), filepath.Base(filename))
}
