package passgen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	lperrors "github.com/illarion/lockpass/internal/errors"
)

// Character pools.
const (
	Lower   = "abcdefghijklmnopqrstuvwxyz"
	Upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits  = "0123456789"
	Symbols = "!@#$%^&*()-_=+[]{};:,.<>/?~"

	// Ambiguous characters are easy to confuse when read or retyped.
	Ambiguous = "O0o1lI|`'\"{}[]()/\\;:.,<>"

	MinLength     = 4
	DefaultLength = 20
)

// Generator produces random passwords. The zero value is not usable; use New.
type Generator struct {
	symbols string
	rand    io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithSymbols replaces the symbol pool.
func WithSymbols(symbols string) Option {
	return func(g *Generator) {
		g.symbols = symbols
	}
}

// CheckSymbols reports the first character of symbols that the generator
// would ignore: invalid UTF-8, a control character or whitespace.
func CheckSymbols(symbols string) error {
	if !utf8.ValidString(symbols) {
		return fmt.Errorf("%w: symbols are not valid UTF-8", lperrors.ErrInput)
	}
	for _, r := range symbols {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return fmt.Errorf("%w: unusable symbol %q", lperrors.ErrInput, r)
		}
	}
	return nil
}

// WithRandom replaces the randomness source. It must be cryptographically
// secure outside of tests.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		g.rand = r
	}
}

// New returns a generator using crypto/rand and the default symbol pool.
func New(opts ...Option) *Generator {
	g := &Generator{symbols: Symbols, rand: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGenerator = New()

// Generate returns a password from the default generator.
func Generate(length int, includeSymbols, allowAmbiguous bool) (string, error) {
	return defaultGenerator.Generate(length, includeSymbols, allowAmbiguous)
}

// Generate returns a password of exactly length characters containing at
// least one character from every active pool. Without allowAmbiguous no
// character from Ambiguous appears.
func (g *Generator) Generate(length int, includeSymbols, allowAmbiguous bool) (string, error) {
	if length < MinLength {
		return "", fmt.Errorf("%w (got %d)", lperrors.ErrInvalidLength, length)
	}

	pools := g.pools(includeSymbols, allowAmbiguous)
	for _, pool := range pools {
		if len(pool) == 0 {
			return "", lperrors.ErrEmptyPool
		}
	}

	password := make([]rune, 0, length)
	for _, pool := range pools {
		ch, err := g.pick(pool)
		if err != nil {
			return "", err
		}
		password = append(password, ch)
	}

	var all []rune
	for _, pool := range pools {
		all = append(all, pool...)
	}
	for len(password) < length {
		ch, err := g.pick(all)
		if err != nil {
			return "", err
		}
		password = append(password, ch)
	}

	if err := g.shuffle(password); err != nil {
		return "", err
	}
	return string(password), nil
}

// pools returns freshly built rune pools; the package constants are never
// modified. Length counts characters, so a custom symbol set may hold
// multi-byte characters.
func (g *Generator) pools(includeSymbols, allowAmbiguous bool) [][]rune {
	sources := []string{Lower, Upper, Digits}
	if includeSymbols {
		sources = append(sources, g.symbols)
	}

	remove := ""
	if !allowAmbiguous {
		remove = Ambiguous
	}

	pools := make([][]rune, len(sources))
	for i, src := range sources {
		pools[i] = usableRunes(src, remove)
	}
	return pools
}

func (g *Generator) pick(pool []rune) (rune, error) {
	idx, err := g.randInt(len(pool))
	if err != nil {
		return 0, err
	}
	return pool[idx], nil
}

// shuffle is a Fisher-Yates shuffle driven by the generator's source.
func (g *Generator) shuffle(data []rune) error {
	for i := len(data) - 1; i > 0; i-- {
		j, err := g.randInt(i + 1)
		if err != nil {
			return err
		}
		data[i], data[j] = data[j], data[i]
	}
	return nil
}

func (g *Generator) randInt(n int) (int, error) {
	v, err := rand.Int(g.rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random data: %w", err)
	}
	return int(v.Int64()), nil
}

// usableRunes returns the distinct printable, non-space characters of
// input that are not in remove. Invalid UTF-8 is dropped.
func usableRunes(input, remove string) []rune {
	var out []rune
	seen := make(map[rune]bool)
	for _, r := range input {
		if r == utf8.RuneError || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			continue
		}
		if seen[r] || strings.ContainsRune(remove, r) {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
