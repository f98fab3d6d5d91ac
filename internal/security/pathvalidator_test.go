package security

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "lockpass")

	validator, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("Expected a directory")
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != DirPermSecure {
		t.Errorf("Expected permissions %o, got %o", DirPermSecure, info.Mode().Perm())
	}
}

func TestPathValidator_ValidateName(t *testing.T) {
	validator, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	tests := []struct {
		name      string
		input     string
		shouldErr bool
		errType   error
	}{
		{"simple file", "vault.bin", false, nil},
		{"hidden file", ".vault", false, nil},
		{"dot slash", "./vault.bin", false, nil},

		{"parent directory", "../vault.bin", true, ErrPathEscapes},
		{"multiple parents", "../../etc/passwd", true, ErrPathEscapes},
		{"absolute path unix", "/etc/passwd", true, ErrAbsolutePath},
		{"subdirectory", "sub/vault.bin", true, ErrNotPlainName},
		{"empty path", "", true, ErrEmptyPath},
		{"dot", ".", true, ErrEmptyPath},
	}

	if runtime.GOOS == "windows" {
		tests = append(tests, struct {
			name      string
			input     string
			shouldErr bool
			errType   error
		}{"absolute path windows", "C:\\Windows\\System32\\config", true, ErrAbsolutePath})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateName(tt.input)

			if tt.shouldErr {
				if err == nil {
					t.Errorf("Expected error for input %q, got none", tt.input)
					return
				}
				if tt.errType != nil && !errors.Is(err, tt.errType) {
					t.Errorf("Expected error type %v, got %v", tt.errType, err)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error for input %q: %v", tt.input, err)
				return
			}
			if strings.ContainsAny(result, `/\`) {
				t.Errorf("Result should be a plain name, got %q", result)
			}
		})
	}
}

func TestPathValidator_WriteFileAtomic(t *testing.T) {
	tmpDir := t.TempDir()

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	if err := validator.WriteFileAtomic("vault.bin", []byte("first"), FilePermSecure); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := validator.WriteFileAtomic("vault.bin", []byte("second"), FilePermSecure); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, "vault.bin"))
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	if string(content) != "second" {
		t.Errorf("File content mismatch: got %q, want %q", content, "second")
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to list directory: %v", err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Temporary files left behind: %v", names)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(tmpDir, "vault.bin"))
		if err != nil {
			t.Fatalf("Failed to stat: %v", err)
		}
		if info.Mode().Perm() != FilePermSecure {
			t.Errorf("Expected permissions %o, got %o", FilePermSecure, info.Mode().Perm())
		}
	}
}

func TestPathValidator_CreateFile(t *testing.T) {
	tmpDir := t.TempDir()

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	if err := validator.CreateFile("vault.bin", []byte("one"), FilePermSecure); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	err = validator.CreateFile("vault.bin", []byte("two"), FilePermSecure)
	if !errors.Is(err, os.ErrExist) {
		t.Errorf("Expected os.ErrExist, got %v", err)
	}

	data, err := validator.ReadFileInRoot("vault.bin")
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if string(data) != "one" {
		t.Errorf("Existing file was overwritten: %q", data)
	}
}

func TestPathValidator_ReadStat(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("test content"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	tests := []struct {
		name      string
		path      string
		shouldErr bool
	}{
		{"valid file", "test.txt", false},
		{"nonexistent file", "missing.txt", true},
		{"path traversal", "../outside.txt", true},
		{"absolute path", "/etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := validator.ReadFileInRoot(tt.path)
			if tt.shouldErr != (err != nil) {
				t.Errorf("ReadFileInRoot(%q) error = %v, shouldErr %v", tt.path, err, tt.shouldErr)
			}
			if !tt.shouldErr && string(data) != "test content" {
				t.Errorf("Content mismatch: got %q", data)
			}

			info, err := validator.StatInRoot(tt.path)
			if tt.shouldErr != (err != nil) {
				t.Errorf("StatInRoot(%q) error = %v, shouldErr %v", tt.path, err, tt.shouldErr)
			}
			if !tt.shouldErr && info == nil {
				t.Error("Expected file info, got nil")
			}
		})
	}
}

// Test that os.Root actually prevents escaping
func TestPathValidator_ActualEscapePrevention(t *testing.T) {
	tmpDir := t.TempDir()

	outsideDir := filepath.Dir(tmpDir)
	targetFile := filepath.Join(outsideDir, "should_not_be_written.txt")
	defer os.Remove(targetFile)

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	err = validator.WriteFileAtomic("../should_not_be_written.txt", []byte("pwned"), FilePermSecure)
	if err == nil {
		t.Error("Expected error when trying to write outside root, got none")
	}

	if _, statErr := os.Stat(targetFile); statErr == nil {
		t.Error("File was created outside the vault directory")
	}
	if _, statErr := os.Stat(filepath.Join(tmpDir, "should_not_be_written.txt")); statErr == nil {
		t.Error("File was created inside the vault directory with an invalid path")
	}
}

func TestPathValidator_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	tmpDir := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "target"), filepath.Join(tmpDir, "link")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	if err := validator.CreateFile("link", []byte("x"), FilePermSecure); err == nil {
		t.Error("Expected error when following a symlink out of the root")
	}
	if _, err := os.Stat(filepath.Join(outside, "target")); err == nil {
		t.Error("File was created through a symlink outside the root")
	}
}
