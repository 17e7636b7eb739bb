package reference

import (
	"database/sql/driver"
	"fmt"
)

// Tristate is a flag that may not have been decided yet.
// The zero value is Unknown and is stored as NULL.
type Tristate int8

const (
	Unknown Tristate = iota
	False
	True
)

// TristateOf converts a decided boolean.
func TristateOf(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// Bool returns the decided value and whether a decision exists.
func (t Tristate) Bool() (value, known bool) {
	switch t {
	case True:
		return true, true
	case False:
		return false, true
	}
	return false, false
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "unknown"
}

// Value implements driver.Valuer.
func (t Tristate) Value() (driver.Value, error) {
	switch t {
	case True:
		return int64(1), nil
	case False:
		return int64(0), nil
	case Unknown:
		return nil, nil
	}
	return nil, fmt.Errorf("invalid tristate %d", int8(t))
}

// Scan implements sql.Scanner.
func (t *Tristate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Unknown
	case int64:
		*t = TristateOf(v != 0)
	case bool:
		*t = TristateOf(v)
	case []byte:
		return t.scanText(string(v))
	case string:
		return t.scanText(v)
	default:
		return fmt.Errorf("cannot scan %T into Tristate", src)
	}
	return nil
}

func (t *Tristate) scanText(s string) error {
	switch s {
	case "1", "t", "true":
		*t = True
	case "0", "f", "false":
		*t = False
	default:
		return fmt.Errorf("cannot scan %q into Tristate", s)
	}
	return nil
}
