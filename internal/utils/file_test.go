package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
	// Idempotent on an existing directory
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir() on existing dir error = %v", err)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("FileExists(file) = false, want true")
	}
	if FileExists(dir) {
		t.Error("FileExists(dir) = true, want false for directories")
	}
	if FileExists(filepath.Join(dir, "missing.jpg")) {
		t.Error("FileExists(missing) = true, want false")
	}
}

func TestGetFileExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.JPG", "jpg"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"/some/dir/image.WebP", "webp"},
	}
	for _, tt := range tests {
		if got := GetFileExtension(tt.in); got != tt.want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	yes := []string{"a.jpg", "b.JPEG", "c.png", "d.webp", "e.tiff"}
	no := []string{"f.gif", "g.bmp", "h.txt", "i", "j.pdf"}

	for _, f := range yes {
		if !IsImageFile(f) {
			t.Errorf("IsImageFile(%q) = false, want true", f)
		}
	}
	for _, f := range no {
		if IsImageFile(f) {
			t.Errorf("IsImageFile(%q) = true, want false", f)
		}
	}
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.jpg", "b.txt", filepath.Join("nested", "c.png")} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListImageFiles(dir)
	if err != nil {
		t.Fatalf("ListImageFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
	for _, f := range files {
		if !IsImageFile(f) {
			t.Errorf("non-image file listed: %s", f)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatFileSize(tt.in); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
