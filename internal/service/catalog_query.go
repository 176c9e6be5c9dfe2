package service

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInvalidID = errors.New("id must be a positive integer")
)

// ParseID accepts only positive decimal integers.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ParseStoreID returns nil only when the value does not parse as an integer.
// Zero and negative ids still filter, and match no store.
func ParseStoreID(raw string) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// ParseCategoryIDs flattens repeated and comma separated values, keeping the
// valid positive ids once each in first-seen order.
func ParseCategoryIDs(values []string) []int64 {
	var (
		ids  []int64
		seen = make(map[int64]struct{})
	)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			id, err := ParseID(part)
			if err != nil {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
