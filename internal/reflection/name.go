package reflection

import "strings"

// Name is a function or constant name as written at a call site.
type Name struct {
	Parts          string
	FullyQualified bool
}

// ParseName reads a name such as `strlen`, `Foo\bar` or `\Foo\bar`.
func ParseName(raw string) Name {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "\\") {
		return Name{Parts: strings.TrimLeft(raw, "\\"), FullyQualified: true}
	}
	return Name{Parts: raw}
}

func (n Name) String() string { return n.Parts }
