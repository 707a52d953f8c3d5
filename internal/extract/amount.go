package extract

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a price that may be missing. The zero value is the empty amount.
type Amount struct {
	Float64 float64
	Valid   bool
}

// Some wraps a parsed value.
func Some(v float64) Amount {
	return Amount{Float64: v, Valid: true}
}

// OrZero returns the value, or 0.0 when the amount is empty.
func (a Amount) OrZero() float64 {
	if !a.Valid {
		return 0
	}
	return a.Float64
}

func (a Amount) String() string {
	if !a.Valid {
		return ""
	}
	return strconv.FormatFloat(a.Float64, 'f', -1, 64)
}

// MarshalJSON writes an empty amount as "" so clients see the same shape
// the feed pipeline has always produced.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte(`""`), nil
	}
	return json.Marshal(a.Float64)
}

// UnmarshalJSON accepts a number, a price string like "$1,500" or "".
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = SplitBudget(s)
		if !a.Valid && strings.TrimSpace(s) != "" {
			return fmt.Errorf("invalid amount %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid amount %s: %w", b, err)
	}
	*a = Some(v)
	return nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
	case float64:
		*a = Some(v)
	case float32:
		*a = Some(float64(v))
	case int64:
		*a = Some(float64(v))
	case []byte:
		*a = SplitBudget(string(v))
	case string:
		*a = SplitBudget(v)
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
	return nil
}

// Value implements driver.Valuer; the empty amount is stored as NULL.
func (a Amount) Value() (driver.Value, error) {
	if !a.Valid {
		return nil, nil
	}
	return a.Float64, nil
}

// GormDataType lets gorm pick the dialect's floating point column type.
func (Amount) GormDataType() string {
	return "float"
}

func parsePrice(s string) Amount {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{}
	}
	return Some(v)
}
