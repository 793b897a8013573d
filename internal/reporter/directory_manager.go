package reporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DirectoryManager owns the on-disk layout of a report: the output
// directory, the HTML file and its optional snapshot directory.
type DirectoryManager struct {
	logger zerolog.Logger
}

func NewDirectoryManager(logger zerolog.Logger) *DirectoryManager {
	return &DirectoryManager{
		logger: logger,
	}
}

// EnsureOutputDirectories creates outputDir and any missing parents.
func (dm *DirectoryManager) EnsureOutputDirectories(outputDir string) error {
	if err := os.MkdirAll(outputDir, DirPermissions); err != nil {
		dm.logger.Error().Err(err).Str("path", outputDir).Msg("Failed to create directory")
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}
	dm.logger.Debug().Str("path", outputDir).Msg("Directory ready")
	return nil
}

// ReportPath is <outputDir>/<taskID>.html.
func (dm *DirectoryManager) ReportPath(outputDir, taskID string) string {
	return filepath.Join(outputDir, taskID+".html")
}

// EnsureSnapshotDir creates the directory holding a report's snapshot files.
func (dm *DirectoryManager) EnsureSnapshotDir(outputDir, taskID string) (string, error) {
	dir := filepath.Join(outputDir, taskID+snapshotDirSuffix)
	if err := dm.EnsureOutputDirectories(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// WriteFile writes data with the report file permissions.
func (dm *DirectoryManager) WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		dm.logger.Error().Err(err).Str("path", path).Msg("Failed to write report file")
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
