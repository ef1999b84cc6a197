package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// BookID identifies a title in the catalog. It is the legacy Keccak-256
// digest of the UTF-8 title.
type BookID [32]byte

// Principal is the identity of a caller, typically an account address.
type Principal string

// Book is a catalog entry.
type Book struct {
	Title  string `json:"title"`
	Copies uint64 `json:"copies"`
}

// Exists reports whether b is a registered book rather than the zero value
// returned for unknown ids.
func (b Book) Exists() bool {
	return b.Title != ""
}

// IDFromTitle derives the catalog key for title.
func IDFromTitle(title string) BookID {
	var id BookID
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(title))
	copy(id[:], h.Sum(nil))
	return id
}

// ParseBookID parses the hex form of an id, with or without the 0x prefix.
func ParseBookID(s string) (BookID, error) {
	var id BookID
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(raw) != hex.EncodedLen(len(id)) {
		return id, fmt.Errorf("%w: book id must be %d hex digits", ErrInvalidArgument, hex.EncodedLen(len(id)))
	}
	if _, err := hex.Decode(id[:], []byte(raw)); err != nil {
		return id, fmt.Errorf("%w: book id: %v", ErrInvalidArgument, err)
	}
	return id, nil
}

// String returns the 0x-prefixed lowercase hex form.
func (id BookID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// MarshalText encodes id in its String form.
func (id BookID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText accepts any form ParseBookID does.
func (id *BookID) UnmarshalText(text []byte) error {
	parsed, err := ParseBookID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
