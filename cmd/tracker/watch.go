package main

import (
	"fmt"
	"io"

	"github.com/envelope-zero/tracker/internal/state"
	"github.com/spf13/cobra"
)

func newWatchCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print a summary line whenever the synchronized data changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), f)
			if err != nil {
				return err
			}
			defer s.close()

			// Holds the latest state only, slow output skips intermediate ones
			changes := make(chan state.State, 1)
			cancel := s.co.Store().Subscribe(func(st state.State) {
				select {
				case <-changes:
				default:
				}
				changes <- st
			})
			defer cancel()

			out := cmd.OutOrStdout()
			summarize(out, s.state())

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case st := <-changes:
					summarize(out, st)
				}
			}
		},
	}
}

func summarize(w io.Writer, s state.State) {
	fmt.Fprintf(w, "transactions=%d wallets=%d goals=%d budgets=%d categories=%d unread=%d\n",
		len(s.Transactions), len(s.Wallets), len(s.Goals), len(s.Budgets), len(s.Categories), state.UnreadCount(s))
}
