package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2SaltLen = 16

// Argon2Params are the Argon2id cost parameters used for new hashes.
// Verification always uses the parameters encoded in the stored hash.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultArgon2Params follows the RFC 9106 second recommended option.
var DefaultArgon2Params = Argon2Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32}

// Argon2HashService implements ports.HashService using Argon2id.
type Argon2HashService struct {
	params Argon2Params
}

// NewArgon2HashService creates a hash service with DefaultArgon2Params.
func NewArgon2HashService() *Argon2HashService {
	return NewArgon2HashServiceWithParams(DefaultArgon2Params)
}

// NewArgon2HashServiceWithParams creates a hash service with custom cost parameters.
func NewArgon2HashServiceWithParams(p Argon2Params) *Argon2HashService {
	return &Argon2HashService{params: p}
}

// phcFormat is the PHC string layout shared with the reference argon2 tools.
const phcFormat = "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"

var b64 = base64.RawStdEncoding

// Hash returns a PHC-encoded Argon2id digest with a fresh random salt.
func (s *Argon2HashService) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("reading salt: %w", err)
	}

	p := s.params
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf(phcFormat, argon2.Version, p.Memory, p.Time, p.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify recomputes the digest with the cost encoded in stored, so hashes
// made under older parameters keep verifying after a cost change.
func (s *Argon2HashService) Verify(password, stored string) (bool, error) {
	ph, err := parsePHC(stored)
	if err != nil {
		return false, err
	}
	p := ph.params
	key := argon2.IDKey([]byte(password), ph.salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(ph.key, key) == 1, nil
}

type phcHash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func parsePHC(stored string) (*phcHash, error) {
	// Leading "$" gives an empty first field.
	fields := strings.Split(stored, "$")
	if len(fields) != 6 || fields[0] != "" {
		return nil, fmt.Errorf("malformed password hash: %d fields", len(fields))
	}
	if fields[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported password hash algorithm %q", fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version field %q", fields[2])
	}

	ph := &phcHash{}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &ph.params.Memory, &ph.params.Time, &ph.params.Threads); err != nil {
		return nil, fmt.Errorf("argon2 cost field %q: %w", fields[3], err)
	}

	var err error
	if ph.salt, err = b64.DecodeString(fields[4]); err != nil {
		return nil, fmt.Errorf("argon2 salt: %w", err)
	}
	if ph.key, err = b64.DecodeString(fields[5]); err != nil {
		return nil, fmt.Errorf("argon2 key: %w", err)
	}
	ph.params.KeyLen = uint32(len(ph.key))
	return ph, nil
}
