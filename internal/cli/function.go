package cli

import (
	"github.com/shinyvision/phpreflect/internal/reflection"
	"github.com/spf13/cobra"
)

func newFunctionCommand(opts *options) *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "function <name>",
		Short: "Describe a function",
		Long:  "Resolves a function name the way a call in the given namespace would and prints its signature.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.Close()

			fn, err := ws.Broker.GetFunction(reflection.ParseName(args[0]), reflection.NewScope(namespace, nil))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printf(w, "%s\n", reflection.Signature(fn))
			if fn.IsVariadic() {
				printf(w, "  variadic\n")
			}
			if file := fn.Native().FileName; file != "" && !fn.Native().Internal {
				printf(w, "  file: %s\n", file)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace the name is resolved from")
	return cmd
}
