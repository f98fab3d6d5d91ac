package vault

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	lperrors "github.com/illarion/lockpass/internal/errors"
)

// Record is one named credential.
type Record struct {
	ID        string
	Name      string
	Username  string
	Password  string
	URL       *string // nil when absent, distinct from ""
	Notes     *string // nil when absent, distinct from ""
	UpdatedAt string  // RFC 3339, UTC
}

// NewRecord creates a record with a fresh id and the current time.
func NewRecord(name, username, password string) Record {
	return Record{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  username,
		Password:  password,
		UpdatedAt: Now(),
	}
}

// Validate rejects a record without a name or with a field that is not
// valid UTF-8. JSON cannot carry such bytes, so they would be replaced
// on save.
func (r Record) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name must not be empty", lperrors.ErrInvalidRecord)
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"id", &r.ID},
		{"name", &r.Name},
		{"username", &r.Username},
		{"password", &r.Password},
		{"url", r.URL},
		{"notes", r.Notes},
		{"updated_at", &r.UpdatedAt},
	}
	for _, f := range fields {
		if f.value != nil && !utf8.ValidString(*f.value) {
			return fmt.Errorf("%w: %s is not valid UTF-8", lperrors.ErrInvalidRecord, f.name)
		}
	}
	return nil
}

// Now returns the current UTC time in the record timestamp format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Optional returns a pointer to s, for URL and Notes.
func Optional(s string) *string {
	return &s
}

// Vault is an ordered collection of records. Order is insertion/update order.
type Vault struct {
	Entries []Record
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{Entries: []Record{}}
}

// Upsert removes every record named r.Name and appends r, so an updated
// record moves to the end.
func (v *Vault) Upsert(r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	kept := v.Entries[:0]
	for _, e := range v.Entries {
		if e.Name != r.Name {
			kept = append(kept, e)
		}
	}
	v.Entries = append(kept, r)
	return nil
}

// Find returns the first record whose name matches exactly.
func (v *Vault) Find(name string) (Record, error) {
	for _, e := range v.Entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", lperrors.ErrNotFound, name)
}

// List returns all records in stored order. The returned slice is a copy.
func (v *Vault) List() []Record {
	out := make([]Record, len(v.Entries))
	copy(out, v.Entries)
	return out
}

// Remove deletes the record with the given name.
func (v *Vault) Remove(name string) error {
	for i, e := range v.Entries {
		if e.Name == name {
			v.Entries = append(v.Entries[:i], v.Entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", lperrors.ErrNotFound, name)
}

// Len returns the number of records.
func (v *Vault) Len() int {
	return len(v.Entries)
}

// Render returns a stable line-oriented text form of the vault, used to
// diff two generations. Passwords are masked unless reveal is set.
func Render(v *Vault, reveal bool) string {
	var b strings.Builder
	for i, e := range v.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		password := "********"
		if reveal {
			password = e.Password
		}
		fmt.Fprintf(&b, "[%s]\n", e.Name)
		fmt.Fprintf(&b, "id: %s\n", e.ID)
		fmt.Fprintf(&b, "username: %s\n", e.Username)
		fmt.Fprintf(&b, "password: %s\n", password)
		fmt.Fprintf(&b, "url: %s\n", renderOptional(e.URL))
		fmt.Fprintf(&b, "notes: %s\n", renderOptional(e.Notes))
		fmt.Fprintf(&b, "updated_at: %s\n", e.UpdatedAt)
	}
	return b.String()
}

func renderOptional(s *string) string {
	if s == nil {
		return "(none)"
	}
	return fmt.Sprintf("%q", *s)
}
