package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	logDirPerm  = 0o750
	logFilePerm = 0o600
)

// RotatorConfig configures a LogRotator.
type RotatorConfig struct {
	Dir        string
	BaseName   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// LogRotator is an io.Writer over a size-rotated log file.
type LogRotator struct {
	mu          sync.Mutex
	cfg         RotatorConfig
	maxSize     int64
	maxAge      time.Duration
	currentFile *os.File
	currentSize int64
}

// NewLogRotator opens (or creates) cfg.Dir/cfg.BaseName for appending.
func NewLogRotator(cfg RotatorConfig) (*LogRotator, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("log directory cannot be empty")
	}
	if cfg.BaseName == "" {
		cfg.BaseName = "permstore.log"
	}
	if err := os.MkdirAll(cfg.Dir, logDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &LogRotator{
		cfg:     cfg,
		maxSize: int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxAge:  time.Duration(cfg.MaxAgeDays) * 24 * time.Hour,
	}
	if err := r.openCurrentFile(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *LogRotator) currentPath() string {
	return filepath.Join(r.cfg.Dir, r.cfg.BaseName)
}

func (r *LogRotator) openCurrentFile() error {
	r.currentSize = 0
	if info, err := os.Stat(r.currentPath()); err == nil {
		r.currentSize = info.Size()
	}

	file, err := os.OpenFile(r.currentPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	r.currentFile = file
	return nil
}

func (r *LogRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentFile == nil {
		if err := r.openCurrentFile(); err != nil {
			return 0, err
		}
	}

	// a zero max size disables rotation
	if r.maxSize > 0 && r.currentSize > 0 && r.currentSize+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.currentFile.Write(p)
	r.currentSize += int64(n)
	return n, err
}

func (r *LogRotator) rotate() error {
	if err := r.currentFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close current log file: %v\n", err)
	}
	r.currentFile = nil

	backupPath := fmt.Sprintf("%s.%s", r.currentPath(), time.Now().Format("2006-01-02-15-04-05.000"))
	if err := os.Rename(r.currentPath(), backupPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	if r.cfg.Compress {
		if err := gzipFile(backupPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to compress log file %s: %v\n", backupPath, err)
		} else if err := os.Remove(backupPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove uncompressed log file %s: %v\n", backupPath, err)
		}
	}

	r.prune()
	return r.openCurrentFile()
}

func gzipFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer out.Close()

	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// prune drops backups older than MaxAgeDays, then the oldest beyond MaxBackups.
func (r *LogRotator) prune() {
	entries, err := os.ReadDir(r.cfg.Dir)
	if err != nil {
		return
	}

	var backups []os.FileInfo
	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), r.cfg.BaseName+".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if r.maxAge > 0 && now.Sub(info.ModTime()) > r.maxAge {
			_ = os.Remove(filepath.Join(r.cfg.Dir, entry.Name()))
			continue
		}
		backups = append(backups, info)
	}

	if r.cfg.MaxBackups <= 0 || len(backups) <= r.cfg.MaxBackups {
		return
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime().Before(backups[j].ModTime())
	})
	for _, info := range backups[:len(backups)-r.cfg.MaxBackups] {
		if err := os.Remove(filepath.Join(r.cfg.Dir, info.Name())); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove excess backup file: %v\n", err)
		}
	}
}

// Close closes the current log file.
func (r *LogRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentFile == nil {
		return nil
	}
	err := r.currentFile.Close()
	r.currentFile = nil
	return err
}
