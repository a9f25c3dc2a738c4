package reflection

import (
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/shinyvision/phpreflect/internal/cache"
	"github.com/shinyvision/phpreflect/internal/parser"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/shinyvision/phpreflect/internal/types"
)

// VariadicFunctions are the built-ins through which a body reads arguments
// beyond its declared parameters.
var VariadicFunctions = []string{"func_get_args", "func_get_arg", "func_num_args"}

// FunctionReflection is a function with docblock types merged into its
// native signature.
type FunctionReflection struct {
	native               *source.Function
	finder               *parser.FunctionCallStatementFinder
	cache                cache.Cache
	phpDocParameterTypes map[string]types.Type
	phpDocReturnType     types.Type

	parameters []ParameterReflection
	returnType types.Type
}

// FunctionReflectionFactory builds function reflections for the broker.
type FunctionReflectionFactory interface {
	Create(native *source.Function, phpDocParameterTypes map[string]types.Type, phpDocReturnType types.Type) *FunctionReflection
}

type functionReflectionFactory struct {
	finder *parser.FunctionCallStatementFinder
	cache  cache.Cache
}

func NewFunctionReflectionFactory(finder *parser.FunctionCallStatementFinder, c cache.Cache) FunctionReflectionFactory {
	return &functionReflectionFactory{finder: finder, cache: c}
}

func (f *functionReflectionFactory) Create(native *source.Function, phpDocParameterTypes map[string]types.Type, phpDocReturnType types.Type) *FunctionReflection {
	return &FunctionReflection{
		native:               native,
		finder:               f.finder,
		cache:                f.cache,
		phpDocParameterTypes: phpDocParameterTypes,
		phpDocReturnType:     phpDocReturnType,
	}
}

func (f *FunctionReflection) Name() string { return f.native.Name }

func (f *FunctionReflection) Native() *source.Function { return f.native }

func (f *FunctionReflection) Parameters() []ParameterReflection {
	if f.parameters != nil {
		return f.parameters
	}
	params := make([]ParameterReflection, 0, len(f.native.Parameters))
	for _, native := range f.native.Parameters {
		params = append(params, NewPhpParameterReflection(native, f.phpDocParameterTypes[native.Name]))
	}
	f.parameters = ApplySignatureCorrections(f.native.Name, params)
	return f.parameters
}

// IsVariadic also reports user functions that read their arguments through
// func_get_args() and friends. The body scan result is cached across runs.
func (f *FunctionReflection) IsVariadic() bool {
	if f.native.IsVariadic() || f.native.Internal {
		return f.native.IsVariadic()
	}
	key := fmt.Sprintf("variadic-function-%s-v0", f.native.Name)
	return DetectVariadicByBody(f.cache, f.finder, key, f.native.Body)
}

func (f *FunctionReflection) ReturnType() types.Type {
	if f.returnType != nil {
		return f.returnType
	}
	if f.native.Name == "count" {
		f.returnType = types.IntegerType{}
		return f.returnType
	}
	f.returnType = types.DecideType(f.native.ReturnType, f.phpDocReturnType)
	return f.returnType
}

// DetectVariadicByBody loads the cached answer for key or scans the body for calls
// to VariadicFunctions and saves the result. Cache failures are logged and
// do not change the answer.
func DetectVariadicByBody(c cache.Cache, finder *parser.FunctionCallStatementFinder, key string, body func() (sitter.Node, []byte, bool)) bool {
	var cached bool
	if c != nil {
		found, err := c.Load(key, &cached)
		if err != nil {
			logger.Warningf("load %s: %v", key, err)
		} else if found {
			return cached
		}
	}

	result := false
	if node, content, ok := body(); ok && finder != nil {
		_, result = finder.FindFunctionCallInStatements(VariadicFunctions, node, content)
	}
	if c != nil {
		if err := c.Save(key, result); err != nil {
			logger.Warningf("save %s: %v", key, err)
		}
	}
	return result
}
