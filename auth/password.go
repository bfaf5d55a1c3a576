package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Algorithm = "argon2id"

// HashParams are the argon2id cost parameters. They are read from
// configuration so each deployment can trade latency against hardware cost.
type HashParams struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// PasswordHasher derives and checks password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// Argon2Hasher produces PHC-formatted argon2id hashes:
// $argon2id$v=19$m=<memory>,t=<time>,p=<parallelism>$<salt>$<hash>
type Argon2Hasher struct {
	params HashParams
	rand   io.Reader
}

// NewArgon2Hasher validates params and returns a hasher.
func NewArgon2Hasher(params HashParams) (*Argon2Hasher, error) {
	if params.Time == 0 || params.Memory == 0 || params.Parallelism == 0 {
		return nil, errors.New("argon2: time, memory and parallelism must be positive")
	}
	if params.SaltLength < 8 || params.KeyLength < 16 {
		return nil, errors.New("argon2: salt must be >= 8 bytes and key >= 16 bytes")
	}
	if params.Time > MaxHashTimeCost || params.Memory > MaxHashMemoryKiB ||
		params.SaltLength > MaxHashSaltLength || params.KeyLength > MaxHashKeyLength {
		return nil, fmt.Errorf("argon2: params exceed t<=%d, m<=%d KiB, salt<=%d, key<=%d",
			MaxHashTimeCost, MaxHashMemoryKiB, MaxHashSaltLength, MaxHashKeyLength)
	}
	return &Argon2Hasher{params: params, rand: rand.Reader}, nil
}

// Hash derives a hash of password with a fresh random salt. The only
// failure is the entropy source, which callers must treat as fatal.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("argon2: read salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Algorithm,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash using the salt and parameters stored in
// encoded. Malformed input yields false.
func (h *Argon2Hasher) Verify(password, encoded string) bool {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false
	}
	computed := argon2.IDKey([]byte(password), parsed.salt, parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.key)))
	return subtle.ConstantTimeCompare(computed, parsed.key) == 1
}

type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

var errMalformedHash = errors.New("argon2: malformed hash")

// Upper bounds on hash parameters, enforced both when parsing a stored hash
// and when building a hasher.
const (
	MaxHashMemoryKiB  = 4 * 1024 * 1024
	MaxHashTimeCost   = 64
	MaxHashKeyLength  = 1024
	MaxHashSaltLength = 1024
)

func parsePHC(encoded string) (*phc, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2Algorithm {
		return nil, errMalformedHash
	}

	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, errMalformedHash
	}

	out := &phc{}
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, errMalformedHash
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, errMalformedHash
		}
		switch k {
		case "m":
			out.memory = uint32(n)
		case "t":
			out.time = uint32(n)
		case "p":
			if n > 255 {
				return nil, errMalformedHash
			}
			out.parallelism = uint8(n)
		default:
			return nil, errMalformedHash
		}
	}
	if out.memory == 0 || out.time == 0 || out.parallelism == 0 ||
		out.memory > MaxHashMemoryKiB || out.time > MaxHashTimeCost {
		return nil, errMalformedHash
	}

	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(out.salt) == 0 || len(out.salt) > MaxHashSaltLength {
		return nil, errMalformedHash
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.key) == 0 || len(out.key) > MaxHashKeyLength {
		return nil, errMalformedHash
	}
	return out, nil
}
