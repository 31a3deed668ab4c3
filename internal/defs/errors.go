package defs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDefs marks errors caused by unreadable or malformed defs, index, or data
// files.
var ErrDefs = errors.New("defs error")

// Errorf builds an ErrDefs-tagged error. When dcid is non-empty it prefixes
// the message so the offending record can be found in the vendor file.
func Errorf(dcid, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if dcid = strings.TrimSpace(dcid); dcid != "" {
		msg = dcid + " " + msg
	}
	return fmt.Errorf("%w: %s", ErrDefs, msg)
}

func wrap(message string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDefs, message)
	}
	return fmt.Errorf("%w: %s: %w", ErrDefs, message, err)
}
