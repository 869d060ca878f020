// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents the current state of an output file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusNew                  // Output doesn't exist yet
	StatusModified             // Output exists but content differs
	StatusUnchanged            // Output exists and content matches
	StatusSkipped              // Input was excluded or ignored
	StatusFailed               // Rewriting or writing failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Changed reports whether the output differs from what is on disk.
func (s FileStatus) Changed() bool {
	return s == StatusNew || s == StatusModified
}

// 📄 FileInfo contains metadata about an output file
type FileInfo struct {
	Path     string     // Path relative to the manager's base directory
	Status   FileStatus // Current status
	Size     int64      // Content size in bytes
	Checksum string     // xxhash of the content
	Error    error      // Any error associated with this file
}

// 💾 FileManager handles output file operations
type FileManager interface {
	// Write stores content at path unless it is already there.
	Write(ctx context.Context, path string, content []byte) (FileInfo, error)

	// Compare reports what Write would do without touching the disk.
	Compare(ctx context.Context, path string, content []byte) (FileInfo, error)

	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// 📈 StatusReporter tracks file status and reports progress
type StatusReporter interface {
	TrackFile(ctx context.Context, path string, info FileInfo)
	ListFiles(ctx context.Context) ([]FileInfo, error)

	StartOperation(ctx context.Context, total int)
	Advance(ctx context.Context)
	FinishOperation(ctx context.Context)
}

var (
	_ FileManager    = (*Manager)(nil)
	_ StatusReporter = (*Manager)(nil)
)

// 🔧 Manager implements both FileManager and StatusReporter
type Manager struct {
	baseDir   string          // Base directory for all operations
	logger    *zerolog.Logger // Logger for status updates
	formatter FileFormatter   // Formatter for status messages

	mu    sync.RWMutex
	files map[string]FileInfo

	total     int
	processed int
}

// 🏭 New creates a new status manager
func New(baseDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// 🔒 getAbsPath returns the absolute path for a given relative path
func (m *Manager) getAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

// 🔍 Checksum hashes content the way the manager compares outputs
func Checksum(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// Compare works out the status content would have at path.
func (m *Manager) Compare(ctx context.Context, path string, content []byte) (FileInfo, error) {
	info := FileInfo{
		Path:     path,
		Size:     int64(len(content)),
		Checksum: Checksum(content),
	}

	existing, err := os.ReadFile(m.getAbsPath(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
		info.Status = StatusNew
	case err != nil:
		return FileInfo{}, errors.Errorf("reading existing file: %w", err)
	case Checksum(existing) == info.Checksum:
		info.Status = StatusUnchanged
	default:
		info.Status = StatusModified
	}
	return info, nil
}

// Write stores content at path atomically, creating parent directories.
// Unchanged files are left alone. The result is tracked.
func (m *Manager) Write(ctx context.Context, path string, content []byte) (FileInfo, error) {
	info, err := m.Compare(ctx, path, content)
	if err != nil {
		return FileInfo{}, err
	}

	if info.Status.Changed() {
		if err := m.WriteFileAtomic(ctx, path, content); err != nil {
			info.Status = StatusFailed
			info.Error = err
			m.TrackFile(ctx, path, info)
			return info, err
		}
	}

	m.TrackFile(ctx, path, info)
	return info, nil
}

// WriteFileAtomic writes through a temp file and a rename.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.getAbsPath(path)

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tempPath := absPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.getAbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// StatusReporter interface implementation

func (m *Manager) TrackFile(ctx context.Context, path string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[path] = info
	msg := m.formatter.FormatFileOperation(path, info.Status)
	if info.Error != nil {
		msg = m.formatter.FormatError(info.Error)
	}
	m.logger.Debug().Str("path", path).Str("status", info.Status.String()).Msg(msg)
}

// ListFiles returns every tracked file sorted by path.
func (m *Manager) ListFiles(ctx context.Context) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// 📊 Summary counts tracked files per status
type Summary map[FileStatus]int

// Summary counts the tracked files.
func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Summary{}
	for _, info := range m.files {
		s[info.Status]++
	}
	return s
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	msg := m.formatter.FormatProgress(0, total)
	m.logger.Info().Int("total", total).Msg(msg)
}

// Advance counts one more processed item.
func (m *Manager) Advance(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed++
	m.logger.Debug().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := m.formatter.FormatProgress(m.total, m.total)
	m.logger.Info().
		Int("processed", m.total).
		Int("total", m.total).
		Msg(msg)
}

// FormatSummary renders the per-status counts of the tracked files.
func (m *Manager) FormatSummary() string {
	return m.formatter.FormatSummary(m.Summary())
}
