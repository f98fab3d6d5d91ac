package security

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/illarion/lockpass/internal/crypto"
)

const (
	DirPermSecure  = 0700 // Directory: owner rwx only
	FilePermSecure = 0600 // File: owner rw only

	tempSuffix = ".tmp-"
)

var (
	ErrPathEscapes  = errors.New("path escapes vault directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
	ErrNotPlainName = errors.New("nested paths are not allowed")
)

// PathValidator confines file operations to the directory holding the
// vault, using os.Root. Every name it accepts is a single path element.
type PathValidator struct {
	root *os.Root
}

// New opens dir as the confinement root, creating it with owner-only
// permissions when missing.
func New(dir string) (*PathValidator, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, DirPermSecure); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault directory: %w", err)
	}

	return &PathValidator{root: root}, nil
}

// Close releases resources held by the PathValidator.
func (pv *PathValidator) Close() error {
	if pv.root != nil {
		return pv.root.Close()
	}
	return nil
}

// ValidateName checks a file name inside the vault directory. It rejects:
// - Empty names
// - Absolute paths
// - Names that escape the directory (using ..)
// - Names with more than one path element
// - Windows reserved names (via filepath.IsLocal)
func (pv *PathValidator) ValidateName(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyPath
	}

	if !filepath.IsLocal(name) {
		if filepath.IsAbs(name) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, name)
		}
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, name)
	}

	clean := filepath.Clean(name)
	if strings.ContainsRune(filepath.ToSlash(clean), '/') {
		return "", fmt.Errorf("%w: %s", ErrNotPlainName, name)
	}
	if clean == "." {
		return "", ErrEmptyPath
	}

	return clean, nil
}

// WriteFileAtomic replaces name with data. The bytes go to a temporary
// file in the same directory which is synced and then renamed over name,
// so readers see either the old or the new contents, never a mix.
func (pv *PathValidator) WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	clean, err := pv.ValidateName(name)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	tmp, err := pv.writeTemp(clean, data, perm)
	if err != nil {
		return err
	}

	if err := pv.root.Rename(tmp, clean); err != nil {
		pv.root.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", clean, err)
	}
	return nil
}

// CreateFile writes data to name only if name does not exist yet.
// It returns an error matching os.ErrExist otherwise.
func (pv *PathValidator) CreateFile(name string, data []byte, perm os.FileMode) error {
	clean, err := pv.ValidateName(name)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	f, err := pv.root.OpenFile(clean, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if err := writeAndSync(f, data); err != nil {
		pv.root.Remove(clean)
		return fmt.Errorf("failed to write %s: %w", clean, err)
	}
	return nil
}

// ReadFileInRoot reads a file inside the vault directory.
func (pv *PathValidator) ReadFileInRoot(name string) ([]byte, error) {
	clean, err := pv.ValidateName(name)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.ReadFile(clean)
}

// StatInRoot stats a file inside the vault directory.
func (pv *PathValidator) StatInRoot(name string) (os.FileInfo, error) {
	clean, err := pv.ValidateName(name)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.Stat(clean)
}

func (pv *PathValidator) writeTemp(name string, data []byte, perm os.FileMode) (string, error) {
	suffix, err := crypto.GenerateRandom(6)
	if err != nil {
		return "", err
	}
	tmp := name + tempSuffix + hex.EncodeToString(suffix)

	f, err := pv.root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	if err := writeAndSync(f, data); err != nil {
		pv.root.Remove(tmp)
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}
	return tmp, nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
