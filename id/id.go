// Package id defines the identity types used across Busk.
//
// There are two id families. Principals — performer owners, tippers, the
// platform owner — are host accounts and use TypeID-based identifiers
// (UUIDv7-based, K-sortable, URL-safe, "acct_suffix"). Engine records —
// performers, sessions, tips — use dense uint64 identifiers assigned from
// the engine's per-table counters: the Nth successful creation in a table
// always yields id N, and an id is never reused.
package id

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the principal type encoded in a TypeID.
type Prefix string

// PrefixAccount is the prefix for host account identifiers. Performer
// owners, tippers and the platform owner are all accounts.
const PrefixAccount Prefix = "acct"

// ID is the identifier type for host principals.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "acct_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// NewAccountID generates a new unique account ID.
func NewAccountID() ID { return New(PrefixAccount) }

// Parse parses a TypeID string (e.g., "acct_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseAccountID parses a string and validates the "acct" prefix.
func ParseAccountID(s string) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != PrefixAccount {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", PrefixAccount, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// AccountID is a type-safe identifier for host accounts (prefix: "acct").
type AccountID = ID

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}

// ──────────────────────────────────────────────────
// Record identifiers
// ──────────────────────────────────────────────────

// PerformerID identifies a performer record. The zero value is never
// assigned; valid ids start at 1.
type PerformerID uint64

// SessionID identifies a performance session record.
type SessionID uint64

// TipID identifies a tip record.
type TipID uint64

// String returns the decimal form, e.g. "42".
func (i PerformerID) String() string { return strconv.FormatUint(uint64(i), 10) }

// IsZero reports whether the id is unassigned.
func (i PerformerID) IsZero() bool { return i == 0 }

// String returns the decimal form, e.g. "42".
func (i SessionID) String() string { return strconv.FormatUint(uint64(i), 10) }

// IsZero reports whether the id is unassigned.
func (i SessionID) IsZero() bool { return i == 0 }

// String returns the decimal form, e.g. "42".
func (i TipID) String() string { return strconv.FormatUint(uint64(i), 10) }

// IsZero reports whether the id is unassigned.
func (i TipID) IsZero() bool { return i == 0 }

// ParsePerformerID parses the decimal form of a performer id.
func ParsePerformerID(s string) (PerformerID, error) {
	v, err := parseRecordID(s)
	return PerformerID(v), err
}

// ParseSessionID parses the decimal form of a session id.
func ParseSessionID(s string) (SessionID, error) {
	v, err := parseRecordID(s)
	return SessionID(v), err
}

// ParseTipID parses the decimal form of a tip id.
func ParseTipID(s string) (TipID, error) {
	v, err := parseRecordID(s)
	return TipID(v), err
}

func parseRecordID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id: parse record id %q: %w", s, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("id: parse record id %q: zero is not a valid id", s)
	}
	return v, nil
}
