package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// SysHealth represents the footprint of the planner on the host.
type SysHealth struct {
	AllocMB      uint64
	SysMB        uint64
	Goroutines   int
	DatabaseSize string
	ArchiveSize  string
	ArchiveFiles int
}

// GetSysHealth collects memory figures and the size of the planner's data.
func GetSysHealth(databasePath, archivePath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	dbSize, _ := pathSize(databasePath)
	archiveSize, files := pathSize(archivePath)

	return SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		Goroutines:   runtime.NumGoroutine(),
		DatabaseSize: formatBytes(dbSize),
		ArchiveSize:  formatBytes(archiveSize),
		ArchiveFiles: files,
	}
}

// pathSize sums the size of the regular files under path. A missing path is empty.
func pathSize(path string) (int64, int) {
	var (
		size  int64
		files int
	)
	if path == "" {
		return 0, 0
	}
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
			files++
		}
		return nil
	})
	return size, files
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
