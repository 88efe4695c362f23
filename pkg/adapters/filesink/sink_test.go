package filesink

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/ainspire/pkg/mocks"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem())

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	data := []byte{0xFF, 0xD8, 0xFF}
	if err := sink.SaveFrame("beach.mp4", 3, data); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "frames", "beach.mp4", "frame-0003.jpg")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %v, got %v", data, saved)
	}
}

func TestSink_SaveFrameContainsName(t *testing.T) {
	tests := []struct {
		name   string
		source string
		dir    string
	}{
		{"nested path", "videos/clip.mp4", "clip.mp4"},
		{"windows path", `C:\videos\clip.mp4`, "clip.mp4"},
		{"traversal", "..", "unnamed"},
		{"empty", "", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mocks.NewFileSystem()
			sink := New(testBaseDir, fs)
			if err := sink.SaveFrame(tt.source, 0, []byte("x")); err != nil {
				t.Fatalf("SaveFrame failed: %v", err)
			}
			expectedPath := filepath.Join(testBaseDir, "frames", tt.dir, "frame-0000.jpg")
			if _, ok := fs.GetFile(expectedPath); !ok {
				t.Errorf("expected file at %s", expectedPath)
			}
		})
	}
}

func TestSink_SaveClassification(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	data := []byte(`{"composition":"Close-Up"}`)
	if err := sink.SaveClassification("job-1", data); err != nil {
		t.Fatalf("SaveClassification failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "classifications", "job-1.json")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_MkdirError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.MkdirAllFunc = func(path string) error { return errors.New("read-only") }
	sink := New(testBaseDir, fs)

	if err := sink.SaveFrame("a.mp4", 0, nil); err == nil {
		t.Error("expected error when directory cannot be created")
	}
}
