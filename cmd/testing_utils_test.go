package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/illarion/lockpass/internal/configs"
	"github.com/illarion/lockpass/internal/core"
	"github.com/illarion/lockpass/internal/crypto"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// testEnv is a vault and config file in a temporary directory.
type testEnv struct {
	vaultPath  string
	configPath string
}

// setupTestEnvironment writes a config with cheap key derivation and sets
// the master password through the environment.
func setupTestEnvironment(t *testing.T, password string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		vaultPath:  filepath.Join(dir, "data", "vault.bin"),
		configPath: filepath.Join(dir, "config.toml"),
	}

	cfg := configs.Default()
	cfg.KDF.MemoryKiB = 64
	cfg.KDF.Time = 1
	cfg.KDF.Parallelism = 1
	if err := configs.Save(env.configPath, cfg); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv(configs.VaultEnv, "")
	t.Setenv(core.PasswordEnv, password)

	t.Cleanup(func() {
		stdin = os.Stdin
		readPasswordConfirm = core.ReadPasswordConfirm
	})
	return env
}

// answerPasswordPrompt makes confirmed password prompts return value.
func answerPasswordPrompt(value string) {
	readPasswordConfirm = func(string) (*crypto.Secret, error) {
		return crypto.NewSecretFromString(value), nil
	}
}

// run executes the command line with the test vault and config, returning
// what was printed to stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetCommandState()
	RootCmd.SetArgs(append([]string{"--vault", e.vaultPath, "--config", e.configPath}, args...))
	return captureOutput(func() error {
		return RootCmd.ExecuteContext(context.Background())
	})
}

// open returns the test vault for direct inspection.
func (e *testEnv) open(t *testing.T) *core.LockPass {
	t.Helper()

	lp, err := core.New(e.vaultPath, core.Options{
		Params: crypto.Params{MemoryKiB: 64, Time: 1, Parallelism: 1},
	})
	if err != nil {
		t.Fatalf("Failed to open vault: %v", err)
	}
	t.Cleanup(func() { lp.Close() })
	return lp
}

// resetCommandState restores every flag to its default so one test run
// does not leak into the next.
func resetCommandState() {
	verbose = false
	debug = false
	vaultFlag = ""
	configFlag = ""
	settings = nil

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(RootCmd)
}

// captureOutput captures stdout during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	os.Stdout = w

	outputChan := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outputChan <- buf.String()
	}()

	runErr := fn()

	w.Close()
	os.Stdout = originalStdout
	output := <-outputChan
	r.Close()

	return output, runErr
}

// envPassword returns the master password the test environment uses.
func envPassword(t *testing.T) *crypto.Secret {
	t.Helper()

	password := core.GetPasswordFromEnv()
	if password == nil {
		t.Fatal("LOCKPASS_PASSWORD is not set")
	}
	return password
}
