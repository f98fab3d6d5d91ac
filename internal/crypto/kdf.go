package crypto

import (
	"fmt"

	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/platform"
	"golang.org/x/crypto/argon2"
)

const (
	DefaultMemoryKiB   = 64 * 1024 // 64 MiB
	DefaultTime        = 3
	DefaultParallelism = 1

	// MaxMemoryKiB bounds the memory cost read from an untrusted header.
	MaxMemoryKiB = 4 * 1024 * 1024
	// MaxTime bounds the iteration count read from an untrusted header.
	MaxTime = 1 << 16
	// MaxParallelism is the largest lane count argon2 accepts.
	MaxParallelism = 255
)

// Params are the Argon2id cost parameters stored in every vault header.
type Params struct {
	MemoryKiB   uint32
	Time        uint32
	Parallelism uint32
}

// DefaultParams returns the cost parameters used for new vaults.
func DefaultParams() Params {
	return Params{
		MemoryKiB:   DefaultMemoryKiB,
		Time:        DefaultTime,
		Parallelism: DefaultParallelism,
	}
}

// Validate reports whether p can be handed to Argon2id.
func (p Params) Validate() error {
	switch {
	case p.Time < 1 || p.Time > MaxTime:
		return fmt.Errorf("%w: time cost %d out of range", lperrors.ErrInvalidParameters, p.Time)
	case p.Parallelism < 1 || p.Parallelism > MaxParallelism:
		return fmt.Errorf("%w: parallelism %d out of range", lperrors.ErrInvalidParameters, p.Parallelism)
	case p.MemoryKiB < 8*p.Parallelism:
		return fmt.Errorf("%w: memory cost %d KiB below 8 KiB per lane", lperrors.ErrInvalidParameters, p.MemoryKiB)
	case p.MemoryKiB > MaxMemoryKiB:
		return fmt.Errorf("%w: memory cost %d KiB too large", lperrors.ErrInvalidParameters, p.MemoryKiB)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("argon2id m=%d KiB t=%d p=%d", p.MemoryKiB, p.Time, p.Parallelism)
}

// totalMemory is replaced in tests.
var totalMemory = platform.TotalMemory

// DeriveKey derives a 32-byte key from password and salt with Argon2id.
// The same inputs always produce the same key. The caller must Destroy
// the returned secret.
func DeriveKey(password, salt []byte, p Params) (*Secret, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", lperrors.ErrInvalidParameters, SaltSize, len(salt))
	}

	// The Go runtime aborts on an allocation it cannot satisfy, so an
	// oversized cost has to be refused before argon2 runs.
	need := uint64(p.MemoryKiB) * 1024
	if total := totalMemory(); total > 0 && need > total {
		return nil, fmt.Errorf("%w: %s needs %d MiB, only %d MiB of memory installed",
			lperrors.ErrDerivationFailure, p, need>>20, total>>20)
	}

	raw := argon2.IDKey(password, salt, p.Time, p.MemoryKiB, uint8(p.Parallelism), KeySize)
	return NewSecret(raw), nil
}
