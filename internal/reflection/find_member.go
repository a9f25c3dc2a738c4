package reflection

import "strings"

// FindMember looks name up exactly, then case-insensitively. A
// case-insensitive hit is stored under name so the next lookup is exact.
func FindMember[T any](members map[string]T, name string) (T, bool) {
	if member, ok := members[name]; ok {
		return member, true
	}
	for candidate, member := range members {
		if strings.EqualFold(candidate, name) {
			members[name] = member
			return member, true
		}
	}
	var zero T
	return zero, false
}
