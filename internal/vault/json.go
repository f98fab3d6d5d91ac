package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// vaultJSON and recordJSON are the plaintext payload format. Required
// fields are pointers so a missing field can be told apart from a zero value.
type vaultJSON struct {
	Entries *[]recordJSON `json:"entries"`
}

type recordJSON struct {
	ID        *string `json:"id"`
	Name      *string `json:"name"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	URL       *string `json:"url"`
	Notes     *string `json:"notes"`
	UpdatedAt *string `json:"updated_at"`
}

// Marshal serializes v as {"entries":[...]}. Absent optional fields are
// written as null. A record that fails Validate is an error rather than
// being stored altered.
func Marshal(v *Vault) ([]byte, error) {
	entries := make([]recordJSON, len(v.Entries))
	for i := range v.Entries {
		e := &v.Entries[i]
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries[i] = recordJSON{
			ID:        &e.ID,
			Name:      &e.Name,
			Username:  &e.Username,
			Password:  &e.Password,
			URL:       e.URL,
			Notes:     e.Notes,
			UpdatedAt: &e.UpdatedAt,
		}
	}

	data, err := json.Marshal(vaultJSON{Entries: &entries})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vault: %w", err)
	}
	return data, nil
}

// Unmarshal parses the payload produced by Marshal. Unknown fields are
// ignored; missing required fields and wrong types are errors.
func Unmarshal(data []byte) (*Vault, error) {
	var raw vaultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Entries == nil {
		return nil, errors.New("missing field entries")
	}

	v := &Vault{Entries: make([]Record, 0, len(*raw.Entries))}
	for i, e := range *raw.Entries {
		r, err := e.record()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		v.Entries = append(v.Entries, r)
	}
	return v, nil
}

func (e recordJSON) record() (Record, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"id", e.ID},
		{"name", e.Name},
		{"username", e.Username},
		{"password", e.Password},
		{"updated_at", e.UpdatedAt},
	}
	for _, f := range required {
		if f.value == nil {
			return Record{}, fmt.Errorf("missing field %s", f.name)
		}
	}
	if _, err := time.Parse(time.RFC3339, *e.UpdatedAt); err != nil {
		return Record{}, fmt.Errorf("invalid updated_at: %w", err)
	}

	return Record{
		ID:        *e.ID,
		Name:      *e.Name,
		Username:  *e.Username,
		Password:  *e.Password,
		URL:       e.URL,
		Notes:     e.Notes,
		UpdatedAt: *e.UpdatedAt,
	}, nil
}
