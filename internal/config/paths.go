package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved absolute directories the application works with.
// All relative configuration paths are resolved against the base directory.
type Paths struct {
	BaseDir   string
	DataDir   string
	ChartsDir string
	LogsDir   string
	WebDir    string
}

// ResolvePaths resolves the configured directories against the current
// working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	base, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	return &Paths{
		BaseDir:   base,
		DataDir:   resolveDir(base, c.Paths.DataDir),
		ChartsDir: resolveDir(base, c.Paths.ChartsDir),
		LogsDir:   resolveDir(base, c.Paths.LogsDir),
		WebDir:    resolveDir(base, c.Paths.WebDir),
	}, nil
}

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// EnsureDirectories creates every writable directory the application needs.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ChartsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetChartPath returns the full path for a chart image file.
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetDataPath returns the full path for a file in the data directory.
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// DatasetPath resolves the configured dataset path against the base
// directory when it is relative.
func (c *Config) DatasetPath(p *Paths) string {
	if filepath.IsAbs(c.Ingest.DatasetPath) {
		return c.Ingest.DatasetPath
	}
	return filepath.Join(p.BaseDir, c.Ingest.DatasetPath)
}

// FileExists reports whether the given path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
