package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/busk/id"
)

func TestNewAccountID(t *testing.T) {
	i := id.NewAccountID()
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixAccount {
		t.Errorf("expected prefix %q, got %q", id.PrefixAccount, i.Prefix())
	}
	if !strings.HasPrefix(i.String(), "acct_") {
		t.Errorf("expected acct_ prefix, got %q", i.String())
	}
}

func TestParseAccountIDRoundTrip(t *testing.T) {
	generated := id.NewAccountID()
	parsed, err := id.ParseAccountID(generated.String())
	if err != nil {
		t.Fatalf("parse round trip failed: %v", err)
	}
	if parsed.String() != generated.String() {
		t.Errorf("round trip mismatch: %q != %q", parsed.String(), generated.String())
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Garbage", "not-a-typeid"},
		{"WrongSeparator", "acct-01h2xcejqtf2nbrexx3vqjhp41"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.input); err == nil {
				t.Errorf("expected error parsing %q", tt.input)
			}
		})
	}
}

func TestParseAccountIDRejectsOtherPrefix(t *testing.T) {
	other := id.New(id.Prefix("user"))
	if _, err := id.ParseAccountID(other.String()); err == nil {
		t.Error("expected prefix mismatch error")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero value should be nil")
	}
	if i.String() != "" {
		t.Errorf("nil ID should stringify empty, got %q", i.String())
	}
}

func TestRecordIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		{"Simple", "42", 42, false},
		{"One", "1", 1, false},
		{"Whitespace", " 7 ", 7, false},
		{"Zero", "0", 0, true},
		{"Negative", "-3", 0, true},
		{"Garbage", "abc", 0, true},
		{"Empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := id.ParsePerformerID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if uint64(got) != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecordIDString(t *testing.T) {
	if got := id.SessionID(17).String(); got != "17" {
		t.Errorf("got %q, want %q", got, "17")
	}
	if !id.TipID(0).IsZero() {
		t.Error("zero TipID should report IsZero")
	}
	if id.PerformerID(1).IsZero() {
		t.Error("PerformerID 1 should not report IsZero")
	}
}
