package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is the numeric identifier shared by every persisted entity. It decodes
// from a JSON number or a numeric string so that ids coming from HTML forms
// and path parameters compare the same way.
type ID int64

// ParseID parses a decimal id. Negative and non-numeric values are rejected.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return ID(v), nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id *ID) UnmarshalJSON(b []byte) error {
	s, isNull, err := scalarText(b)
	if err != nil {
		return err
	}
	if isNull || s == "" {
		return nil
	}
	v, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Ref is an optional reference to another record. The zero value is an absent
// reference and is serialized as null.
type Ref struct {
	ID    ID
	Valid bool
}

// NewRef returns a present reference to id.
func NewRef(id ID) Ref {
	return Ref{ID: id, Valid: true}
}

// String returns the decimal id, or "null" when the reference is absent. This
// is the form used by list filters.
func (r Ref) String() string {
	if !r.Valid {
		return "null"
	}
	return r.ID.String()
}

// Is reports whether r points at id.
func (r Ref) Is(id ID) bool {
	return r.Valid && r.ID == id
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(int64(r.ID))
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	s, isNull, err := scalarText(b)
	if err != nil {
		return err
	}
	if isNull || s == "" || s == "null" {
		*r = Ref{}
		return nil
	}
	id, err := ParseID(s)
	if err != nil {
		return err
	}
	*r = NewRef(id)
	return nil
}

// Amount is a money value in the clinic currency. It accepts a JSON number or
// a numeric string; an empty string decodes as zero.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	s, isNull, err := scalarText(b)
	if err != nil {
		return err
	}
	if isNull || s == "" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid amount %q", s)
	}
	*a = Amount(v)
	return nil
}

// Sub returns a-b rounded to cents.
func (a Amount) Sub(b Amount) Amount {
	return Amount(math.Round((float64(a)-float64(b))*100) / 100)
}

// Add returns a+b rounded to cents.
func (a Amount) Add(b Amount) Amount {
	return Amount(math.Round((float64(a)+float64(b))*100) / 100)
}

// scalarText extracts the text of a JSON number or string literal.
func scalarText(b []byte) (string, bool, error) {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return "", true, nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return "", false, err
		}
		return strings.TrimSpace(s), false, nil
	}
	if raw == "" || raw[0] == '{' || raw[0] == '[' || raw == "true" || raw == "false" {
		return "", false, fmt.Errorf("expected number or string, got %s", raw)
	}
	return raw, false, nil
}
