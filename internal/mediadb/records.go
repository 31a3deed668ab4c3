package mediadb

import (
	"strings"

	"csmedia/internal/defs"
)

// requireField returns record's value for key or a format error naming dcid.
func requireField(record defs.Def, dcid, key string) (string, error) {
	value, ok := record.Field(key)
	if !ok {
		return "", defs.Errorf(dcid, "missing %s", key)
	}
	return value, nil
}

// manufacturerSeries splits a "<manufacturer>,<series>" field.
func manufacturerSeries(record defs.Def, dcid, key string) (string, string, error) {
	value, err := requireField(record, dcid, key)
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return "", "", defs.Errorf(dcid, "%s is malformed: %q", key, value)
	}
	return parts[0], parts[1], nil
}
