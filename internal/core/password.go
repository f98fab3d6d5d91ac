package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/lockpass/internal/crypto"
	lperrors "github.com/illarion/lockpass/internal/errors"
	"golang.org/x/term"
)

// PasswordEnv names the environment variable read by GetPasswordFromEnv.
const PasswordEnv = "LOCKPASS_PASSWORD"

// ReadPassword reads a password from the terminal without echoing. The
// prompt goes to stderr so stdout stays clean for piping.
func ReadPassword(prompt string) (*crypto.Secret, error) {
	if !IsTerminal() {
		return nil, lperrors.ErrNoTerminal
	}

	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return crypto.NewSecret(password), nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm(prompt string) (*crypto.Secret, error) {
	password1, err := ReadPassword(prompt)
	if err != nil {
		return nil, err
	}

	password2, err := ReadPassword("Confirm password: ")
	if err != nil {
		password1.Destroy()
		return nil, err
	}
	defer password2.Destroy()

	if !password1.Equal(password2) {
		password1.Destroy()
		return nil, fmt.Errorf("passwords do not match")
	}

	return password1, nil
}

// GetPasswordFromEnv reads the master password from LOCKPASS_PASSWORD.
// It returns nil when the variable is unset or empty.
func GetPasswordFromEnv() *crypto.Secret {
	password := os.Getenv(PasswordEnv)
	if password == "" {
		return nil
	}
	return crypto.NewSecretFromString(password)
}

// IsTerminal reports whether stdin is an interactive terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadLine prints prompt to stderr and reads one line from r, without the
// trailing newline.
func ReadLine(r io.Reader, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
