package models

import (
	"database/sql/driver"
	"fmt"
)

// BinaryText holds arbitrary bytes that live in a text column. Password
// hashes and salts are raw 32-byte strings; they must never be parsed,
// trimmed, or otherwise treated as text.
type BinaryText []byte

func (b BinaryText) Value() (driver.Value, error) {
	return string(b), nil
}

func (b *BinaryText) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*b = nil
	case string:
		*b = BinaryText(value)
	case []byte:
		copied := make([]byte, len(value))
		copy(copied, value)
		*b = BinaryText(copied)
	default:
		return fmt.Errorf("scan BinaryText: unsupported source type %T", src)
	}
	return nil
}

func (b BinaryText) Empty() bool {
	return len(b) == 0
}
