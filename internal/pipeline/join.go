package pipeline

import (
	"fmt"
	"strings"

	"go-join-pipeline/internal/model"
)

// MatchMode selects how join-key values are compared.
type MatchMode string

const (
	// MatchString compares the string projection of both fields, so the
	// number 1 and the string "1" match while 1 and 1.0 do not.
	MatchString MatchMode = "string"
	// MatchTyped compares the compacted JSON values, so 1 and "1" differ.
	MatchTyped MatchMode = "typed"
)

// ParseMatchMode accepts "", "string" or "typed".
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchString:
		return MatchString, nil
	case MatchTyped:
		return MatchTyped, nil
	default:
		return "", fmt.Errorf("unknown match mode %q (want %q or %q)", s, MatchString, MatchTyped)
	}
}

// Join combines base with incoming using string comparison of the key
// fields. See JoinWithMode.
func Join(base, incoming []model.Record, baseKey, incomingKey string) []model.Record {
	return JoinWithMode(base, incoming, baseKey, incomingKey, MatchString)
}

// JoinWithMode emits, for each base record, one merged record per matching
// incoming record (incoming fields win). Merged records come first, grouped
// by base order and then incoming order; base records without a match follow
// unchanged in their original order. Incoming records that match nothing are
// dropped. Every pair is compared; no index is built.
func JoinWithMode(base, incoming []model.Record, baseKey, incomingKey string, mode MatchMode) []model.Record {
	key := func(r model.Record, field string) string { return r.KeyString(field) }
	if mode == MatchTyped {
		key = func(r model.Record, field string) string { return r.KeyRaw(field) }
	}

	incomingKeys := make([]string, len(incoming))
	for i, m := range incoming {
		incomingKeys[i] = key(m, incomingKey)
	}

	merged := make([]model.Record, 0, len(base))
	var unmatched []model.Record
	for _, b := range base {
		bk := key(b, baseKey)
		matched := false
		for i, m := range incoming {
			if incomingKeys[i] == bk {
				merged = append(merged, b.Merge(m))
				matched = true
			}
		}
		if !matched {
			unmatched = append(unmatched, b)
		}
	}

	return append(merged, unmatched...)
}
