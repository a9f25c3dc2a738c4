package cli

import (
	"github.com/shinyvision/phpreflect/internal/cache"
	"github.com/spf13/cobra"
)

func newCacheCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent reflection cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cache.New(opts.config.Cache.Backend, opts.config.CacheDir())
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Clear(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "cleared %s cache\n", opts.config.Cache.Backend)
			return nil
		},
	})
	return cmd
}
