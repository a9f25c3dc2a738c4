package phpdoc

import (
	"regexp"

	"github.com/shinyvision/phpreflect/internal/types"
)

var (
	paramTagRe  = regexp.MustCompile(`@param\s+(` + TypePattern + `)\s+(?:&\s*)?(?:\.\.\.\s*)?\$([a-zA-Z0-9_]+)`)
	returnTagRe = regexp.MustCompile(`@return\s+(` + TypePattern + `)`)
	varTagRe    = regexp.MustCompile(`@var\s+(` + TypePattern + `)`)
)

// ParameterTypesFromPhpDoc maps parameter names to the types their @param
// tags declare. Tags naming unknown parameters or types missing from the map
// are ignored.
func ParameterTypesFromPhpDoc(typeMap TypeMap, parameterNames []string, docComment string) map[string]types.Type {
	known := make(map[string]struct{}, len(parameterNames))
	for _, name := range parameterNames {
		known[name] = struct{}{}
	}
	result := make(map[string]types.Type)
	for _, match := range paramTagRe.FindAllStringSubmatch(docComment, -1) {
		name := match[2]
		if _, ok := known[name]; !ok {
			continue
		}
		if t, ok := typeMap.Lookup(match[1]); ok {
			result[name] = t
		}
	}
	return result
}

// ReturnTypeFromPhpDoc returns the type of the first @return tag, or nil.
func ReturnTypeFromPhpDoc(typeMap TypeMap, docComment string) types.Type {
	match := returnTagRe.FindStringSubmatch(docComment)
	if match == nil {
		return nil
	}
	if t, ok := typeMap.Lookup(match[1]); ok {
		return t
	}
	return nil
}

// PropertyTypeString returns the type text of the @var tag. A docblock with
// no @var, or with several, has none.
func PropertyTypeString(docComment string) (string, bool) {
	matches := varTagRe.FindAllStringSubmatch(docComment, -1)
	if len(matches) != 1 {
		return "", false
	}
	return matches[0][1], true
}
