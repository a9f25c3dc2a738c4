package types

import "strings"

// Union flattens and deduplicates the given types. Mixed absorbs everything,
// nil members are skipped and an empty union is mixed.
func Union(members ...Type) Type {
	flat := make([]Type, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	var add func(t Type) bool
	add = func(t Type) bool {
		switch v := t.(type) {
		case nil:
			return true
		case MixedType:
			return false
		case UnionType:
			for _, inner := range v.Types {
				if !add(inner) {
					return false
				}
			}
			return true
		}
		key := strings.ToLower(t.Describe())
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
		flat = append(flat, t)
		return true
	}
	for _, member := range members {
		if !add(member) {
			return MixedType{}
		}
	}
	switch len(flat) {
	case 0:
		return MixedType{}
	case 1:
		return flat[0]
	}
	return UnionType{Types: flat}
}

// ContainsNull reports whether t admits null. A nil type admits nothing.
func ContainsNull(t Type) bool {
	return t != nil && t.IsNullable()
}

// AddNull widens t so that it accepts null.
func AddNull(t Type) Type {
	if t == nil {
		return NullType{}
	}
	if t.IsNullable() {
		return t
	}
	return Union(t, NullType{})
}

// RemoveNull strips null from a union. Mixed is returned unchanged.
func RemoveNull(t Type) Type {
	u, ok := t.(UnionType)
	if !ok {
		if _, isNull := t.(NullType); isNull {
			return MixedType{}
		}
		return t
	}
	kept := make([]Type, 0, len(u.Types))
	for _, member := range u.Types {
		if _, isNull := member.(NullType); isNull {
			continue
		}
		kept = append(kept, member)
	}
	return Union(kept...)
}

// DecideType combines a native declaration with a docblock type. The docblock
// wins unless the two disagree about null, since a native declaration is
// enforced by the runtime. With neither available the result is mixed.
func DecideType(native, phpDoc Type) Type {
	switch {
	case native == nil && phpDoc == nil:
		return MixedType{}
	case native == nil:
		return phpDoc
	case phpDoc == nil:
		return native
	}
	if native.IsNullable() != phpDoc.IsNullable() {
		return native
	}
	return phpDoc
}
