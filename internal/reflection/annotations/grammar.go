package annotations

import (
	"regexp"
	"strings"

	"github.com/shinyvision/phpreflect/internal/phpdoc"
)

var (
	methodTagRe = regexp.MustCompile(`@method\s+(?:(?P<IsStatic>static)\s+)?(?:(?P<Type>` + phpdoc.TypePattern + `)\s+)?(?P<MethodName>[a-zA-Z0-9_]+)(?P<Parameters>(?:\([^)]*\))?)`)
	parameterRe = regexp.MustCompile(`^(?:(?P<Type>` + phpdoc.TypePattern + `)\s+)?(?P<IsPassedByReference>&)?(?P<IsVariadic>\.\.\.)?\$(?P<Name>[a-zA-Z0-9_]+)(?:\s*=\s*(?P<DefaultValue>.+))?`)
	commaRe     = regexp.MustCompile(`\s*,\s*`)
)

// methodTag is one `@method` line of a class docblock.
type methodTag struct {
	Static     bool
	Type       string
	Name       string
	Parameters []parameterTag
}

type parameterTag struct {
	Type            string
	ByReference     bool
	Variadic        bool
	Name            string
	DefaultValue    string
	HasDefaultValue bool
}

// parseMethodTags reads `@method [static] [Type] name(params)` tags.
func parseMethodTags(docComment string) []methodTag {
	var tags []methodTag
	for _, match := range methodTagRe.FindAllStringSubmatch(docComment, -1) {
		group := submatches(methodTagRe, match)
		tags = append(tags, methodTag{
			Static:     group["IsStatic"] == "static",
			Type:       group["Type"],
			Name:       group["MethodName"],
			Parameters: parseParameters(strings.TrimSpace(strings.Trim(group["Parameters"], "()"))),
		})
	}
	return tags
}

// parseParameters reads `[Type] [&][...]$name [= default]` items. Items that
// do not match are skipped.
func parseParameters(list string) []parameterTag {
	if list == "" {
		return nil
	}
	var params []parameterTag
	for _, item := range commaRe.Split(list, -1) {
		match := parameterRe.FindStringSubmatch(strings.TrimSpace(item))
		if match == nil {
			continue
		}
		group := submatches(parameterRe, match)
		params = append(params, parameterTag{
			Type:            group["Type"],
			ByReference:     group["IsPassedByReference"] != "",
			Variadic:        group["IsVariadic"] != "",
			Name:            group["Name"],
			DefaultValue:    strings.TrimSpace(group["DefaultValue"]),
			HasDefaultValue: group["DefaultValue"] != "",
		})
	}
	return params
}

func submatches(re *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}
