package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *Cmd) getPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Connects and reports the round trip of one ping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeSession(s)

			var (
				done    bool
				latency time.Duration
				pingErr error
			)
			s.Ping(func(l time.Duration, err error) { done, latency, pingErr = true, l, err })
			if err := c.wait(s, func() bool { return done }); err != nil {
				return err
			}
			if pingErr != nil {
				return pingErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: pong in %s\n", s, latency)
			return nil
		},
	}
}
