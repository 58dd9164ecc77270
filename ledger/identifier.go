package ledger

import "regexp"

// IDLength is the exact length of book and card identifiers.
const IDLength = 6

var idPattern = regexp.MustCompile(`^[0-9]{6}$`)

// ParseID validates that raw is exactly six ASCII digits and returns it unchanged.
// Leading zeros are significant and preserved; "000001" and "1" are different identifiers
// and only the former is valid.
func ParseID(raw string) (string, error) {
	if !idPattern.MatchString(raw) {
		return "", ErrInvalidID
	}

	return raw, nil
}

// IsValidID reports whether raw is a well-formed 6-digit identifier.
func IsValidID(raw string) bool {
	return idPattern.MatchString(raw)
}
