// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/ainspire/pkg/ports"
)

// Sink saves debug output to files under baseDir:
//
//	frames/<source>/frame-0000.jpg
//	classifications/<job id>.json
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveFrame saves an encoded frame captured from sourceName.
func (s *Sink) SaveFrame(sourceName string, index int, data []byte) error {
	dir := filepath.Join(s.baseDir, "frames", dirName(sourceName))
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.jpg", index))
	return s.fs.WriteFile(path, data)
}

// SaveClassification saves the raw classifier response for a job.
func (s *Sink) SaveClassification(jobID string, data []byte) error {
	dir := filepath.Join(s.baseDir, "classifications")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, dirName(jobID)+".json")
	return s.fs.WriteFile(path, data)
}

// dirName keeps a user-supplied name from escaping baseDir.
func dirName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		return "unnamed"
	}
	return name
}

var _ ports.DebugSink = (*Sink)(nil)
