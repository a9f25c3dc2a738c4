package cli

import (
	"io"
	"slices"
	"strings"

	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/spf13/cobra"
)

func newClassCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "class <name>",
		Short: "Describe a class, interface or trait",
		Long:  "Prints the hierarchy of a class and its methods, properties and constants with docblock types applied.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			class, err := ws.Broker.GetClass(args[0])
			if err != nil {
				return err
			}
			return describeClass(cmd.OutOrStdout(), class)
		},
	}
}

func describeClass(w io.Writer, class *reflection.ClassReflection) error {
	kind := "class"
	switch {
	case class.IsInterface():
		kind = "interface"
	case class.IsTrait():
		kind = "trait"
	case class.IsAbstract():
		kind = "abstract class"
	case class.IsFinal():
		kind = "final class"
	}
	printf(w, "%s %s\n", kind, class.DisplayName())
	if file, ok := class.FileName(); ok {
		printf(w, "  file: %s\n", file)
	}
	if parents := class.ParentClassesNames(); len(parents) > 0 {
		printf(w, "  extends: %s\n", strings.Join(parents, ", "))
	}
	if interfaces := class.InterfaceNames(); len(interfaces) > 0 {
		printf(w, "  implements: %s\n", strings.Join(interfaces, ", "))
	}
	if traits := class.TraitNames(); len(traits) > 0 {
		printf(w, "  uses: %s\n", strings.Join(traits, ", "))
	}

	constants := class.Native().Constants()
	if len(constants) > 0 {
		printf(w, "constants:\n")
		for _, native := range constants {
			constant, err := class.Constant(native.Name)
			if err != nil {
				return err
			}
			printf(w, "  %s const %s = %s\n", reflection.Visibility(constant), constant.Name(), constant.Value())
		}
	}

	properties := slices.Clone(class.NativeProperties())
	if len(properties) > 0 {
		slices.SortStableFunc(properties, func(a, b *source.Property) int { return compareNames(a.Name, b.Name) })
		printf(w, "properties:\n")
		for _, native := range properties {
			property, err := class.ExtendedProperty(native.Name, nil)
			if err != nil {
				return err
			}
			static := ""
			if property.IsStatic() {
				static = "static "
			}
			printf(w, "  %s %s%s $%s\n", reflection.Visibility(property), static, property.Type().Describe(), native.Name)
		}
	}

	methods := slices.Clone(class.NativeMethods())
	if len(methods) > 0 {
		slices.SortStableFunc(methods, func(a, b *source.Method) int { return compareNames(a.Name, b.Name) })
		printf(w, "methods:\n")
		for _, native := range methods {
			method, err := class.ExtendedMethod(native.Name, nil)
			if err != nil {
				return err
			}
			printf(w, "  %s\n", reflection.Signature(method))
		}
	}
	return nil
}

func compareNames(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
