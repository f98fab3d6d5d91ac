package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/illarion/lockpass/internal/codec"
	"github.com/illarion/lockpass/internal/crypto"
	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/storage"
	"github.com/illarion/lockpass/internal/vault"
)

// StatusInfo describes a vault without decrypting it.
type StatusInfo struct {
	Path         string
	Size         int64
	Modified     time.Time
	Version      byte
	Algorithm    string
	KDF          string
	Params       crypto.Params
	Generations  int
	LastArchived time.Time
	LastSaved    time.Time // recorded in the history database
	VaultID      string
}

// Status returns the current status (no password required). A file with
// a damaged header is reported through the returned error.
func (l *LockPass) Status(ctx context.Context) (*StatusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := l.validator.StatInRoot(l.name)
	if err != nil {
		return nil, lperrors.ErrNotInitialized
	}

	data, err := l.readFile()
	if err != nil {
		return nil, err
	}
	header, err := codec.ParseHeader(data)
	if err != nil {
		return nil, err
	}

	status := &StatusInfo{
		Path:      l.path,
		Size:      info.Size(),
		Modified:  info.ModTime(),
		Version:   header.Version,
		Algorithm: Algorithm,
		KDF:       KDFName,
		Params:    header.Params,
	}

	db, err := l.openHistoryReadOnly()
	if err != nil {
		l.log.Warnf("History unavailable: %v", err)
		return status, nil
	}
	if db == nil {
		return status, nil
	}
	defer db.Close()

	if id, err := db.GetVaultID(); err == nil {
		status.VaultID = id
	}
	if saved, err := db.GetModified(); err == nil {
		status.LastSaved = saved
	}
	gens, err := db.ListGenerations()
	if err != nil {
		l.log.Warnf("Failed to read history: %v", err)
		return status, nil
	}
	status.Generations = len(gens)
	if len(gens) > 0 {
		status.LastArchived = gens[len(gens)-1].SavedAt
	}
	return status, nil
}

// History lists archived generations, oldest first (no password required).
func (l *LockPass) History(ctx context.Context) ([]storage.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.Exists() {
		return nil, lperrors.ErrNotInitialized
	}

	db, err := l.openHistoryReadOnly()
	if err != nil || db == nil {
		return nil, err
	}
	defer db.Close()

	gens, err := db.ListGenerations()
	if err != nil {
		return nil, lperrors.IO("read history", err)
	}
	return gens, nil
}

// loadGeneration decrypts generation seq. ChangePassword clears the
// history, so every generation is under the current password.
func loadGeneration(db *storage.Storage, seq uint64, password *crypto.Secret) (*vault.Vault, error) {
	data, _, err := db.GetGeneration(seq)
	if err != nil {
		if errors.Is(err, lperrors.ErrGenerationNotFound) {
			return nil, err
		}
		return nil, lperrors.IO("read history", err)
	}

	v, err := codec.Decode(data, password)
	if err != nil {
		return nil, fmt.Errorf("generation %d: %w", seq, err)
	}
	return v, nil
}

// Restore replaces the vault contents with generation seq. password must
// open both the current vault and the generation. The current contents
// are archived first, so a restore can itself be undone.
func (l *LockPass) Restore(ctx context.Context, password *crypto.Secret, seq uint64) error {
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

	restored, err := loadGeneration(db, seq, password)
	if err != nil {
		return err
	}

	l.log.Infof("Restoring generation %d (%d records)", seq, restored.Len())
	return l.save(db, current, v.Len(), restored, password, fmt.Sprintf("restore %d", seq))
}

// Diff compares generation seq with the current vault. Passwords are
// masked unless reveal is set. An empty result means no difference.
func (l *LockPass) Diff(ctx context.Context, password *crypto.Secret, seq uint64, reveal bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	current, err := l.Load(password)
	if err != nil {
		return "", err
	}

	db, err := l.openHistoryReadOnly()
	if err != nil {
		return "", err
	}
	if db == nil {
		return "", fmt.Errorf("%w: %d", lperrors.ErrGenerationNotFound, seq)
	}
	defer db.Close()

	old, err := loadGeneration(db, seq, password)
	if err != nil {
		return "", err
	}

	return GenerateUnifiedDiff(
		fmt.Sprintf("generation %d", seq), "current",
		vault.Render(old, reveal), vault.Render(current, reveal),
	), nil
}
