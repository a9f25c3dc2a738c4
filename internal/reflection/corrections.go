package reflection

import "github.com/shinyvision/phpreflect/internal/types"

// signatureCorrection patches a built-in function whose shipped signature is
// missing or mistypes parameters. apply must leave a corrected list as it is.
type signatureCorrection func(params []ParameterReflection) []ParameterReflection

var signatureCorrections = map[string]signatureCorrection{
	"array_unique": appendWhenCount(1, NewDummyParameter("sort_flags", types.IntegerType{}, true)),
	"fputcsv":      appendWhenCount(4, NewDummyParameter("escape_char", types.StringType{}, true)),
	"unpack":       setAt(2, NewDummyParameter("offset", types.IntegerType{}, true)),
	"imagepng": appendWhenCount(2,
		NewDummyParameter("quality", types.IntegerType{}, true),
		NewDummyParameter("filters", types.IntegerType{}, true),
	),
	"session_start":               appendWhenCount(0, NewDummyParameter("options", types.ArrayType{ItemType: types.MixedType{}}, true)),
	"locale_get_display_language": setAt(1, NewDummyParameter("in_locale", types.StringType{}, true)),
	"imagewebp":                   appendWhenCount(2, NewDummyParameter("quality", types.IntegerType{}, true)),
	"setproctitle":                appendWhenCount(0, NewDummyParameter("title", types.StringType{}, false)),
	"get_class": func([]ParameterReflection) []ParameterReflection {
		return []ParameterReflection{NewDummyParameter("object", types.ObjectWithoutClassType{}, true)}
	},
}

// ApplySignatureCorrections returns params with the correction for the named
// function applied. Names match exactly. Applying it twice changes nothing.
func ApplySignatureCorrections(function string, params []ParameterReflection) []ParameterReflection {
	correct, ok := signatureCorrections[function]
	if !ok {
		return params
	}
	return correct(params)
}

func appendWhenCount(count int, extra ...ParameterReflection) signatureCorrection {
	return func(params []ParameterReflection) []ParameterReflection {
		if len(params) != count {
			return params
		}
		corrected := make([]ParameterReflection, 0, len(params)+len(extra))
		corrected = append(corrected, params...)
		return append(corrected, extra...)
	}
}

// setAt replaces the parameter at index, or appends it when the list ends
// right before index.
func setAt(index int, param ParameterReflection) signatureCorrection {
	return func(params []ParameterReflection) []ParameterReflection {
		switch {
		case index < len(params):
			corrected := append([]ParameterReflection(nil), params...)
			corrected[index] = param
			return corrected
		case index == len(params):
			corrected := make([]ParameterReflection, 0, len(params)+1)
			corrected = append(corrected, params...)
			return append(corrected, param)
		}
		return params
	}
}
