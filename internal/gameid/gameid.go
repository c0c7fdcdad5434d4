// Package gameid produces short, sortable identifiers for recorded games.
//
// An ID is a UUID written as 26 characters of Crockford base32, the TypeID
// suffix format. Live games use UUIDv7 so IDs sort by creation time;
// simulated games derive a name-based UUID from their seed so reruns of the
// same simulation produce the same IDs.
package gameid

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32, lower case.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an ID.
const Length = 26

// namespace scopes seed-derived IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/lox/cambio/games"))

// Generator creates time-ordered IDs from a random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate returns a new UUIDv7-based ID.
func (g *Generator) Generate() (string, error) {
	var (
		id  uuid.UUID
		err error
	)
	if g.rand == nil {
		id, err = uuid.NewV7()
	} else {
		id, err = uuid.NewV7FromReader(g.rand)
	}
	if err != nil {
		return "", fmt.Errorf("generate game id: %w", err)
	}
	return Encode(id), nil
}

// Generate returns a new time-ordered ID using crypto/rand. It panics if the
// system random source fails.
func Generate() string {
	id, err := NewGenerator(nil).Generate()
	if err != nil {
		panic(err)
	}
	return id
}

// FromSeed returns the ID of the game played from seed.
func FromSeed(seed int64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(seed))
	return Encode(uuid.NewSHA1(namespace, b[:]))
}

// Encode writes id as 26 base32 characters. The 128 bits are left-padded
// with two zero bits, so the first character is always 0-7.
func Encode(id uuid.UUID) string {
	var sb strings.Builder
	sb.Grow(Length)
	for i := range Length {
		var v byte
		for j := range 5 {
			v = v<<1 | bitAt(id, i*5+j-2)
		}
		sb.WriteByte(alphabet[v])
	}
	return sb.String()
}

// Parse decodes an ID produced by Encode.
func Parse(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := Validate(s); err != nil {
		return id, err
	}
	for i := range Length {
		v := byte(strings.IndexByte(alphabet, s[i]))
		for j := range 5 {
			pos := i*5 + j - 2
			if pos < 0 {
				continue
			}
			if v>>(4-j)&1 == 1 {
				id[pos/8] |= 1 << (7 - pos%8)
			}
		}
	}
	return id, nil
}

// Validate checks if a game ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}

	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}

func bitAt(id uuid.UUID, pos int) byte {
	if pos < 0 {
		return 0
	}
	return id[pos/8] >> (7 - pos%8) & 1
}
