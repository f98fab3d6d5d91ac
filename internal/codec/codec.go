package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/illarion/lockpass/internal/crypto"
	lperrors "github.com/illarion/lockpass/internal/errors"
	"github.com/illarion/lockpass/internal/vault"
)

// File layout, little-endian:
//
//	0   magic "RPSS"
//	4   version
//	5   memory cost (KiB, u32)
//	9   time cost (u32)
//	13  parallelism (u32)
//	17  salt (16 bytes)
//	33  nonce (12 bytes)
//	45  ciphertext || tag
const (
	Version    = 1
	HeaderSize = 45

	offVersion  = 4
	offMemory   = 5
	offTime     = 9
	offParallel = 13
	offSalt     = 17
	offNonce    = offSalt + crypto.SaltSize
)

// Magic identifies a vault file.
var Magic = []byte("RPSS")

// Header is the unencrypted prefix of a vault file.
type Header struct {
	Version byte
	Params  crypto.Params
	Salt    []byte
	Nonce   []byte
}

// ParseHeader checks length, magic, version, and cost parameters, in that
// order, without deriving a key.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, lperrors.ErrTruncatedFile
	}
	if !bytes.Equal(data[:offVersion], Magic) {
		return nil, lperrors.ErrBadMagic
	}
	if data[offVersion] != Version {
		return nil, fmt.Errorf("%w: %d", lperrors.ErrUnsupportedVersion, data[offVersion])
	}

	h := &Header{
		Version: data[offVersion],
		Params: crypto.Params{
			MemoryKiB:   binary.LittleEndian.Uint32(data[offMemory:]),
			Time:        binary.LittleEndian.Uint32(data[offTime:]),
			Parallelism: binary.LittleEndian.Uint32(data[offParallel:]),
		},
		Salt:  append([]byte(nil), data[offSalt:offNonce]...),
		Nonce: append([]byte(nil), data[offNonce:HeaderSize]...),
	}
	if err := h.Params.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// MarshalBinary writes the 45-byte header.
func (h *Header) MarshalBinary() ([]byte, error) {
	if len(h.Salt) != crypto.SaltSize || len(h.Nonce) != crypto.NonceSize {
		return nil, fmt.Errorf("%w: bad salt or nonce size", lperrors.ErrInvalidParameters)
	}

	buf := make([]byte, HeaderSize)
	copy(buf, Magic)
	buf[offVersion] = h.Version
	binary.LittleEndian.PutUint32(buf[offMemory:], h.Params.MemoryKiB)
	binary.LittleEndian.PutUint32(buf[offTime:], h.Params.Time)
	binary.LittleEndian.PutUint32(buf[offParallel:], h.Params.Parallelism)
	copy(buf[offSalt:], h.Salt)
	copy(buf[offNonce:], h.Nonce)
	return buf, nil
}

// Encode serializes v and encrypts it under password. A fresh salt and
// nonce are drawn on every call, so encoding the same vault twice never
// produces the same bytes. The derived key and the plaintext are wiped
// before returning; password is left to the caller.
func Encode(v *vault.Vault, password *crypto.Secret, params crypto.Params) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	plaintext, err := vault.Marshal(v)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(plaintext)

	return encodePayload(plaintext, password, params)
}

// encodePayload encrypts an already serialized payload.
func encodePayload(plaintext []byte, password *crypto.Secret, params crypto.Params) ([]byte, error) {
	salt, err := crypto.GenerateRandom(crypto.SaltSize)
	if err != nil {
		return nil, err
	}
	nonce, err := crypto.GenerateRandom(crypto.NonceSize)
	if err != nil {
		return nil, err
	}

	if !password.Alive() {
		return nil, lperrors.ErrSecretDestroyed
	}
	key, err := crypto.DeriveKey(password.Bytes(), salt, params)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	ciphertext, err := crypto.Seal(key, nonce, plaintext)
	if err != nil {
		return nil, err
	}

	h := Header{Version: Version, Params: params, Salt: salt, Nonce: nonce}
	header, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(header, ciphertext...), nil
}

// Decode authenticates and decrypts a vault file. A wrong password and a
// modified file both return ErrAuthenticationFailure.
func Decode(data []byte, password *crypto.Secret) (*vault.Vault, error) {
	plaintext, err := decodePayload(data, password)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(plaintext)

	v, err := vault.Unmarshal(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lperrors.ErrMalformedPayload, err)
	}
	return v, nil
}

func decodePayload(data []byte, password *crypto.Secret) ([]byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	if !password.Alive() {
		return nil, lperrors.ErrSecretDestroyed
	}
	key, err := crypto.DeriveKey(password.Bytes(), h.Salt, h.Params)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	return crypto.Open(key, h.Nonce, data[HeaderSize:])
}
