// Package refcode stamps new records with a human-facing reference code and an
// internal unique identifier. Reference codes are for display and lookup only
// and may collide.
package refcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// Alphabet has no look-alike characters (0/O, 1/I). Its length divides
	// 256, so every random byte maps to a character with equal probability.
	Alphabet      = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	MinSuffix     = 5
	MaxSuffix     = 8
	DefaultSuffix = 6
)

var (
	ErrInvalidPrefix = errors.New("reference prefix must be 1-6 letters or digits")
	ErrInvalidLength = fmt.Errorf("suffix length must be between %d and %d", MinSuffix, MaxSuffix)

	prefixRe = regexp.MustCompile(`^[A-Z0-9]{1,6}$`)
)

// Generator draws reference suffixes and record IDs from one random source.
// The source is injected so tests can be deterministic.
type Generator struct {
	mu     sync.Mutex
	source io.Reader
	length int
}

// NewGenerator returns a generator reading from source, or crypto/rand when
// source is nil.
func NewGenerator(source io.Reader, length int) (*Generator, error) {
	if length == 0 {
		length = DefaultSuffix
	}
	if length < MinSuffix || length > MaxSuffix {
		return nil, ErrInvalidLength
	}
	if source == nil {
		source = rand.Reader
	}
	return &Generator{source: source, length: length}, nil
}

// ValidPrefix reports whether prefix, once upper-cased, is a usable category prefix.
func ValidPrefix(prefix string) bool {
	return prefixRe.MatchString(strings.ToUpper(prefix))
}

// Generate returns PREFIX-SUFFIX, e.g. "FAC-7KQ2ZP".
func (g *Generator) Generate(prefix string) (string, error) {
	prefix = strings.ToUpper(prefix)
	if !prefixRe.MatchString(prefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}

	buf := make([]byte, g.length)
	g.mu.Lock()
	_, err := io.ReadFull(g.source, buf)
	g.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("read random source: %w", err)
	}

	var b strings.Builder
	b.Grow(len(prefix) + 1 + g.length)
	b.WriteString(prefix)
	b.WriteByte('-')
	for _, v := range buf {
		b.WriteByte(Alphabet[int(v)&(len(Alphabet)-1)])
	}
	return b.String(), nil
}

// NewID returns a random (version 4) UUID drawn from the generator's source.
func (g *Generator) NewID() (uuid.UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return uuid.NewRandomFromReader(g.source)
}
