package main

import (
	"github.com/envelope-zero/tracker/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// flags are the persistent flags of all commands.
type flags struct {
	user   string
	remote string
	cache  string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Track expenses and keep them in sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if f.remote != "" {
				cfg.RemoteURL = f.remote
			}
			if f.cache != "" {
				cfg.Cache.Path = f.cache
			}

			f.cfg = cfg
			log.Logger = cfg.Logger(cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&f.user, "user", "u", "", "identity to sign in as")
	root.PersistentFlags().StringVar(&f.remote, "remote", "", "URL of the document server API, e.g. http://localhost:8080/v1")
	root.PersistentFlags().StringVar(&f.cache, "cache", "", "path of the local cache")

	root.AddCommand(
		newServeCmd(f),
		newAddWalletCmd(f),
		newAddTransactionCmd(f),
		newListCmd(f),
		newWatchCmd(f),
	)

	return root
}
