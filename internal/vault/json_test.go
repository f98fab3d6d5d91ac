package vault

import (
	"errors"
	"strings"
	"testing"

	lperrors "github.com/illarion/lockpass/internal/errors"
)

func TestMarshalOptionalFields(t *testing.T) {
	v := New()
	absent := NewRecord("absent", "u", "p")
	empty := NewRecord("empty", "u", "p")
	empty.URL = Optional("")
	empty.Notes = Optional("")
	full := NewRecord("full", "u", "p")
	full.URL = Optional("https://example.com")
	full.Notes = Optional("line1\nline2")
	for _, r := range []Record{absent, empty, full} {
		_ = v.Upsert(r)
	}

	data, err := Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if !strings.Contains(string(data), `"url":null`) {
		t.Errorf("Absent URL should serialize as null: %s", data)
	}
	if !strings.Contains(string(data), `"url":""`) {
		t.Errorf("Empty URL should serialize as empty string: %s", data)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", got.Len())
	}

	if got.Entries[0].URL != nil || got.Entries[0].Notes != nil {
		t.Error("Absent fields came back present")
	}
	if got.Entries[1].URL == nil || *got.Entries[1].URL != "" {
		t.Error("Empty URL did not round-trip")
	}
	if got.Entries[1].Notes == nil || *got.Entries[1].Notes != "" {
		t.Error("Empty notes did not round-trip")
	}
	if *got.Entries[2].URL != "https://example.com" || *got.Entries[2].Notes != "line1\nline2" {
		t.Errorf("Full record changed: %+v", got.Entries[2])
	}
	if got.Entries[2].ID != full.ID || got.Entries[2].UpdatedAt != full.UpdatedAt {
		t.Error("ID or timestamp changed")
	}
}

func TestMarshalEmptyVault(t *testing.T) {
	data, err := Marshal(&Vault{})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != `{"entries":[]}` {
		t.Errorf("Unexpected payload: %s", data)
	}
}

func TestUnmarshalRejectsInvalidPayloads(t *testing.T) {
	const valid = `{"id":"1","name":"n","username":"u","password":"p","updated_at":"2024-01-02T03:04:05Z"}`

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `not json`},
		{"missing entries", `{}`},
		{"null entries", `{"entries":null}`},
		{"entries not array", `{"entries":{}}`},
		{"missing id", `{"entries":[{"name":"n","username":"u","password":"p","updated_at":"2024-01-02T03:04:05Z"}]}`},
		{"missing password", `{"entries":[{"id":"1","name":"n","username":"u","updated_at":"2024-01-02T03:04:05Z"}]}`},
		{"missing updated_at", `{"entries":[{"id":"1","name":"n","username":"u","password":"p"}]}`},
		{"bad timestamp", `{"entries":[{"id":"1","name":"n","username":"u","password":"p","updated_at":"yesterday"}]}`},
		{"wrong type", `{"entries":[{"id":1,"name":"n","username":"u","password":"p","updated_at":"2024-01-02T03:04:05Z"}]}`},
		{"second entry broken", `{"entries":[` + valid + `,{"id":"2"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.payload)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	payload := `{"version":2,"entries":[{"id":"1","name":"n","username":"u","password":"p","url":null,"updated_at":"2024-01-02T03:04:05Z","tags":["x"]}]}`

	v, err := Unmarshal([]byte(payload))
	if err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if v.Len() != 1 || v.Entries[0].URL != nil {
		t.Errorf("Unexpected result: %+v", v.Entries)
	}
}

func TestMarshalRejectsInvalidUTF8(t *testing.T) {
	v := New()
	v.Entries = append(v.Entries, NewRecord("github", "octocat", "pa\xffss"))

	if _, err := Marshal(v); !errors.Is(err, lperrors.ErrInvalidRecord) {
		t.Fatalf("Expected ErrInvalidRecord, got %v", err)
	}

	v.Entries[0].Password = "pässwörd"
	data, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Entries[0].Password != "pässwörd" {
		t.Errorf("Password changed in round trip: %q", got.Entries[0].Password)
	}
}
