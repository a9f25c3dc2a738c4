// Package cli holds the cobra commands of the phpreflect binary.
package cli

import (
	"fmt"
	"io"

	"github.com/shinyvision/phpreflect/internal/broker"
	"github.com/shinyvision/phpreflect/internal/config"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

type options struct {
	configPath string
	root       string
	verbose    int

	config *config.Config
}

// NewRootCommand builds the command tree. Every invocation gets its own
// options so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "phpreflect",
		Short:         "Reflection of PHP classes and functions from source",
		Long:          "phpreflect reads PHP sources with tree-sitter, merges native signatures with docblock types and answers questions about classes, methods and functions.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: phpreflect.yaml in the workspace root)")
	root.PersistentFlags().StringVar(&opts.root, "root", ".", "workspace root")
	root.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity")

	root.AddCommand(newClassCommand(opts))
	root.AddCommand(newFunctionCommand(opts))
	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newCacheCommand(opts))
	return root
}

func (o *options) load() error {
	cfg, err := config.Load(o.configPath, o.root)
	if err != nil {
		return err
	}
	o.config = cfg

	verbosity := cfg.Log.Verbosity + o.verbose
	var logFile *string
	if cfg.Log.File != "" {
		path := cfg.Abs(cfg.Log.File)
		logFile = &path
	}
	commonlog.Configure(verbosity, logFile)
	return nil
}

func (o *options) openWorkspace() (*broker.Workspace, error) {
	ws, err := broker.OpenWorkspace(o.config)
	if err != nil {
		return nil, fmt.Errorf("open workspace %s: %w", o.config.WorkspaceRoot, err)
	}
	return ws, nil
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
