package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/illarion/lockpass/internal/codec"
	"github.com/illarion/lockpass/internal/crypto"
	lperrors "github.com/illarion/lockpass/internal/errors"
	logger "github.com/illarion/lockpass/internal/logging"
	"github.com/illarion/lockpass/internal/security"
	"github.com/illarion/lockpass/internal/storage"
	"github.com/illarion/lockpass/internal/vault"
)

const (
	HistorySuffix = ".history" // History database sits next to the vault file
	Algorithm     = "ChaCha20-Poly1305"
	KDFName       = "Argon2id"
)

// ErrSamePassword is returned by ChangePassword when the new password
// equals the current one.
var ErrSamePassword = fmt.Errorf("%w: new password must differ from the current one", lperrors.ErrInput)

// Options tune a LockPass instance. Zero values select the defaults.
type Options struct {
	Params      crypto.Params // Cost used when saving; zero means crypto.DefaultParams
	HistoryKeep int           // Previous generations to keep; 0 disables history
	LockTimeout time.Duration // How long to wait for another process
	Logger      logger.Logger
}

// LockPass manages one encrypted vault file and its history.
type LockPass struct {
	path      string
	name      string
	validator *security.PathValidator
	opts      Options
	log       logger.Logger
}

// New creates a LockPass for the vault file at vaultPath. The parent
// directory is created with owner-only permissions if needed.
func New(vaultPath string, opts Options) (*LockPass, error) {
	absPath, err := filepath.Abs(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	validator, err := security.New(filepath.Dir(absPath))
	if err != nil {
		return nil, lperrors.IO("open vault directory", err)
	}

	name, err := validator.ValidateName(filepath.Base(absPath))
	if err != nil {
		validator.Close()
		return nil, fmt.Errorf("invalid vault path %s: %w", vaultPath, err)
	}

	if opts.Params == (crypto.Params{}) {
		opts.Params = crypto.DefaultParams()
	}
	if err := opts.Params.Validate(); err != nil {
		validator.Close()
		return nil, err
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = storage.DefaultLockTimeout
	}

	return &LockPass{
		path:      absPath,
		name:      name,
		validator: validator,
		opts:      opts,
		log:       opts.Logger,
	}, nil
}

// Close releases resources held by the LockPass instance
func (l *LockPass) Close() error {
	if l.validator != nil {
		return l.validator.Close()
	}
	return nil
}

// Path returns the absolute vault file path.
func (l *LockPass) Path() string {
	return l.path
}

// HistoryPath returns the absolute path of the history database.
func (l *LockPass) HistoryPath() string {
	return l.path + HistorySuffix
}

// Exists reports whether the vault file exists.
func (l *LockPass) Exists() bool {
	_, err := l.validator.StatInRoot(l.name)
	return err == nil
}

func (l *LockPass) openHistory() (*storage.Storage, error) {
	db, err := storage.Open(l.HistoryPath(), l.opts.LockTimeout)
	if err != nil {
		if errors.Is(err, lperrors.ErrVaultBusy) {
			return nil, err
		}
		return nil, lperrors.IO("open history", err)
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, lperrors.IO("initialize history", err)
	}
	return db, nil
}

// openHistoryReadOnly returns nil without error when no history exists yet.
func (l *LockPass) openHistoryReadOnly() (*storage.Storage, error) {
	if _, err := os.Stat(l.HistoryPath()); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	db, err := storage.OpenReadOnly(l.HistoryPath(), l.opts.LockTimeout)
	if err != nil {
		if errors.Is(err, lperrors.ErrVaultBusy) {
			return nil, err
		}
		return nil, lperrors.IO("open history", err)
	}
	return db, nil
}

func (l *LockPass) readFile() ([]byte, error) {
	data, err := l.validator.ReadFileInRoot(l.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, lperrors.ErrNotInitialized
		}
		return nil, lperrors.IO("read vault", err)
	}
	return data, nil
}

// Init creates a new empty vault encrypted under password.
func (l *LockPass) Init(ctx context.Context, password *crypto.Secret) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.Exists() {
		return lperrors.ErrAlreadyExists
	}

	db, err := l.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.GetOrCreateVaultID(); err != nil {
		return lperrors.IO("store vault id", err)
	}

	l.log.Debugf("Deriving key with %s", l.opts.Params)
	data, err := codec.Encode(vault.New(), password, l.opts.Params)
	if err != nil {
		return err
	}

	if err := l.validator.CreateFile(l.name, data, security.FilePermSecure); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return lperrors.ErrAlreadyExists
		}
		return lperrors.IO("write vault", err)
	}

	l.log.Infof("Created vault at %s", l.path)
	return db.UpdateModified()
}

// Load decrypts the vault.
func (l *LockPass) Load(password *crypto.Secret) (*vault.Vault, error) {
	data, err := l.readFile()
	if err != nil {
		return nil, err
	}

	l.log.Debugf("Decrypting %s (%d bytes)", l.path, len(data))
	return codec.Decode(data, password)
}

// VerifyPassword checks if the password opens this vault
func (l *LockPass) VerifyPassword(password *crypto.Secret) error {
	_, err := l.Load(password)
	return err
}

// update runs fn on the decrypted vault and saves the result. The history
// lock is held for the whole cycle.
func (l *LockPass) update(ctx context.Context, password *crypto.Secret, reason string, fn func(*vault.Vault) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.Exists() {
		return lperrors.ErrNotInitialized
	}

	db, err := l.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	current, err := l.readFile()
	if err != nil {
		return err
	}

	v, err := codec.Decode(current, password)
	if err != nil {
		return err
	}
	before := v.Len()

	if err := fn(v); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return l.save(db, current, before, v, password, reason)
}

// save archives the current file and atomically replaces it with v.
func (l *LockPass) save(db *storage.Storage, current []byte, records int, v *vault.Vault, password *crypto.Secret, reason string) error {
	if l.opts.HistoryKeep > 0 {
		gen := storage.Generation{
			SavedAt: time.Now(),
			Reason:  reason,
			Records: records,
		}
		if h, err := codec.ParseHeader(current); err == nil {
			gen.KDF = h.Params.String()
		}

		seq, err := db.AppendGeneration(current, gen)
		if err != nil {
			return lperrors.IO("archive previous generation", err)
		}
		l.log.Debugf("Archived generation %d (%s)", seq, reason)
	}

	if err := l.write(v, password); err != nil {
		return err
	}

	if l.opts.HistoryKeep > 0 {
		removed, err := db.Prune(l.opts.HistoryKeep)
		if err != nil {
			l.log.Warnf("Failed to prune history: %v", err)
		} else if removed > 0 {
			l.log.Debugf("Pruned %d old generations", removed)
		}
	}

	if err := db.UpdateModified(); err != nil {
		l.log.Warnf("Failed to update modified time: %v", err)
	}
	l.log.Infof("Saved %d records to %s", v.Len(), l.path)
	return nil
}

// write encrypts v under password with a fresh salt and nonce and
// atomically replaces the vault file.
func (l *LockPass) write(v *vault.Vault, password *crypto.Secret) error {
	data, err := codec.Encode(v, password, l.opts.Params)
	if err != nil {
		return err
	}
	if err := l.validator.WriteFileAtomic(l.name, data, security.FilePermSecure); err != nil {
		return lperrors.IO("write vault", err)
	}
	return nil
}

// AddRecord inserts r, replacing any record with the same name.
func (l *LockPass) AddRecord(ctx context.Context, password *crypto.Secret, r vault.Record) error {
	return l.update(ctx, password, "add "+r.Name, func(v *vault.Vault) error {
		return v.Upsert(r)
	})
}

// GetRecord returns the record with the given name.
func (l *LockPass) GetRecord(password *crypto.Secret, name string) (vault.Record, error) {
	v, err := l.Load(password)
	if err != nil {
		return vault.Record{}, err
	}
	return v.Find(name)
}

// ListRecords returns all records in stored order.
func (l *LockPass) ListRecords(password *crypto.Secret) ([]vault.Record, error) {
	v, err := l.Load(password)
	if err != nil {
		return nil, err
	}
	return v.List(), nil
}

// RemoveRecord deletes the record with the given name.
func (l *LockPass) RemoveRecord(ctx context.Context, password *crypto.Secret, name string) error {
	return l.update(ctx, password, "rm "+name, func(v *vault.Vault) error {
		return v.Remove(name)
	})
}

// ChangePassword re-encrypts the vault under newPassword with a fresh
// salt and nonce. Archived generations are encrypted under the current
// password, so they are deleted and the history database is compacted to
// drop their pages. newPassword must differ from currentPassword.
func (l *LockPass) ChangePassword(ctx context.Context, currentPassword, newPassword *crypto.Secret) error {
	if currentPassword.Equal(newPassword) {
		return ErrSamePassword
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.Exists() {
		return lperrors.ErrNotInitialized
	}

	db, err := l.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	current, err := l.readFile()
	if err != nil {
		return err
	}
	v, err := codec.Decode(current, currentPassword)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := l.write(v, newPassword); err != nil {
		return err
	}

	removed, err := db.ClearGenerations()
	if err != nil {
		return lperrors.IO("clear history", err)
	}
	if removed > 0 {
		l.log.Infof("Removed %d generations encrypted under the old password", removed)
	}
	// The vault is already rewritten; a failed compaction only leaves
	// freed pages behind, which 'lockpass compact' can retry.
	if err := db.Compact(); err != nil {
		l.log.Warnf("Failed to compact history, run 'lockpass compact': %v", err)
	}

	if err := db.UpdateModified(); err != nil {
		l.log.Warnf("Failed to update modified time: %v", err)
	}
	l.log.Infof("Re-encrypted %d records under the new password", v.Len())
	return nil
}

// Compact compacts the history database to reclaim unused space.
func (l *LockPass) Compact(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.Exists() {
		return lperrors.ErrNotInitialized
	}

	db, err := l.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Compact(); err != nil {
		return lperrors.IO("compact history", err)
	}
	return nil
}

// GetVaultID retrieves the vault ID from the history database
func (l *LockPass) GetVaultID() (string, error) {
	if !l.Exists() {
		return "", lperrors.ErrNotInitialized
	}

	db, err := l.openHistoryReadOnly()
	if err != nil {
		return "", err
	}
	if db == nil {
		return "", fmt.Errorf("vault id not found")
	}
	defer db.Close()

	return db.GetVaultID()
}

// GetOrCreateVaultID retrieves existing vault ID or generates a new one
func (l *LockPass) GetOrCreateVaultID() (string, error) {
	if !l.Exists() {
		return "", lperrors.ErrNotInitialized
	}

	db, err := l.openHistory()
	if err != nil {
		return "", err
	}
	defer db.Close()

	return db.GetOrCreateVaultID()
}
