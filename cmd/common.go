package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/illarion/lockpass/internal/core"
	"github.com/illarion/lockpass/internal/crypto"
	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/keyring"
	"github.com/illarion/lockpass/internal/passgen"
	"github.com/illarion/lockpass/internal/ui"
)

// stdin is read for non-secret prompts such as the record username.
var stdin io.Reader = os.Stdin

// GetPassword retrieves password from environment or prompts user.
// The caller must Destroy the returned secret.
func GetPassword(prompt string) (*crypto.Secret, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		Logger.Debugf("Using password from %s", core.PasswordEnv)
		return password, nil
	}

	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, err
	}
	return password, nil
}

// GetPasswordWithRetry is like GetPassword but also consults the OS keyring
// for vaultID. A keyring password that fails verify is stale: it is removed
// and the user is prompted instead. The returned flag reports whether the
// password came from the keyring.
func GetPasswordWithRetry(prompt, vaultID string, verify func(*crypto.Secret) error) (*crypto.Secret, bool, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		Logger.Debugf("Using password from %s", core.PasswordEnv)
		return password, false, nil
	}

	if vaultID != "" {
		password, err := keyring.GetPassword(vaultID)
		if err == nil {
			err = verify(password)
			if err == nil {
				Logger.Infof("Using password from keyring")
				return password, true, nil
			}
			password.Destroy()
			if !errors.Is(err, lperrors.ErrAuthenticationFailure) {
				return nil, false, err
			}

			Logger.Warnf("Password stored in keyring no longer opens the vault, removing it")
			if err := keyring.DeletePassword(vaultID); err != nil {
				Logger.Warnf("Failed to remove keyring entry: %v", err)
			}
		} else if !errors.Is(err, keyring.ErrNotFound) {
			Logger.Debugf("Keyring unavailable: %v", err)
		}
	}

	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, false, err
	}
	return password, false, nil
}

// unlockPassword obtains the master password for an existing vault.
func unlockPassword(lp *core.LockPass) (*crypto.Secret, error) {
	if !lp.Exists() {
		return nil, lperrors.ErrNotInitialized
	}

	vaultID, _ := lp.GetVaultID()
	password, _, err := GetPasswordWithRetry("Enter password: ", vaultID, lp.VerifyPassword)
	return password, err
}

// readPasswordConfirm reads a hidden password twice. Tests replace it.
var readPasswordConfirm = core.ReadPasswordConfirm

// GetNewPassword reads a new master password (env var or prompt with
// confirmation) and warns when it is easy to guess.
func GetNewPassword(prompt string) (*crypto.Secret, error) {
	password := core.GetPasswordFromEnv()
	if password == nil {
		var err error
		if password, err = readPasswordConfirm(prompt); err != nil {
			return nil, err
		}
	}
	return checkNewPassword(password)
}

// PromptNewPassword reads a replacement master password. It always
// prompts, since LOCKPASS_PASSWORD holds the current one.
func PromptNewPassword(prompt string) (*crypto.Secret, error) {
	password, err := readPasswordConfirm(prompt)
	if err != nil {
		return nil, err
	}
	return checkNewPassword(password)
}

func checkNewPassword(password *crypto.Secret) (*crypto.Secret, error) {
	if password.Len() == 0 {
		password.Destroy()
		return nil, fmt.Errorf("%w: password must not be empty", lperrors.ErrInput)
	}

	warnIfWeak(string(password.Bytes()))
	return password, nil
}

func warnIfWeak(password string, userInputs ...string) {
	strength := passgen.Estimate(password, userInputs...)
	if strength.Weak() {
		Logger.Warnf("Password is %s (would be cracked in %s)", strength.Label(), strength.CrackTime)
	}
}

// HandleError prints err with a hint and exits with status 1.
func HandleError(err error) {
	msg, hint := describeError(err)
	fmt.Fprintf(os.Stderr, "%s %s\n", ui.Error.Sprint("Error:"), msg)
	if hint != "" {
		fmt.Fprintln(os.Stderr, hint)
	}
	crypto.Purge()
	os.Exit(1)
}

// describeError maps an error to the message and hint shown to the user.
func describeError(err error) (string, string) {
	switch {
	case errors.Is(err, lperrors.ErrAuthenticationFailure):
		// Never reveal which of the two causes it was.
		return "wrong password or damaged vault", ""
	case errors.Is(err, lperrors.ErrNotInitialized):
		return "vault not initialized", "Run 'lockpass init' first"
	case errors.Is(err, lperrors.ErrAlreadyExists):
		return "vault already exists", "Use 'lockpass status' to see current state"
	case errors.Is(err, lperrors.ErrVaultBusy):
		return "vault is in use by another lockpass process", "Try again when it has finished"
	case errors.Is(err, lperrors.ErrNotFound):
		return err.Error(), "Use 'lockpass list' to see stored records"
	case errors.Is(err, lperrors.ErrGenerationNotFound):
		return err.Error(), "Use 'lockpass history' to see archived generations"
	case errors.Is(err, core.ErrSamePassword):
		return err.Error(), "Choose a password you have not used for this vault"
	case errors.Is(err, lperrors.ErrNoTerminal):
		return err.Error(), "Set " + core.PasswordEnv + " or run lockpass from a terminal"
	case errors.Is(err, lperrors.ErrInvalidLength):
		return err.Error(), fmt.Sprintf("Use --len %d or more", passgen.MinLength)
	case errors.Is(err, lperrors.ErrFormat):
		return err.Error(), "Check that --vault points to a lockpass vault"
	case errors.Is(err, fs.ErrPermission):
		return err.Error(), "Check the permissions of the vault directory"
	default:
		return err.Error(), ""
	}
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
