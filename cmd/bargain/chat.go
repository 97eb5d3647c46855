package main

import (
	"os"

	"github.com/aretw0/bargain/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func newChatCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Negotiate interactively in the terminal",
		Long: `Starts one negotiation and reads the buyer's messages from standard input.
Type a price to counter, /deal to accept the standing offer, or quit to walk away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := newHost(cmd, v)
			if err != nil {
				return err
			}
			defer host.Close()

			opts := cli.ChatOptions{IdleTimeout: host.Settings.IdleTimeout}
			opts.SessionID, _ = cmd.Flags().GetString("session")
			opts.JSON, _ = cmd.Flags().GetBool("json")
			opts.ShowState, _ = cmd.Flags().GetBool("state")
			opts.Plain, _ = cmd.Flags().GetBool("plain")
			if !cmd.Flags().Changed("plain") {
				opts.Plain = !term.IsTerminal(int(os.Stdout.Fd()))
			}

			_, err = cli.RunChat(cmd.Context(), host, opts, cmd.InOrStdin(), cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().String("session", "", "Session ID (generated when empty)")
	cmd.Flags().Bool("json", false, "Exchange JSON lines instead of text")
	cmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering (default when stdout is not a terminal)")
	cmd.Flags().Bool("state", false, "Print the engine state after every reply")
	cmd.Flags().Duration("idle-timeout", 0, "Close the negotiation with a timeout after this much silence (0 waits forever)")
	bind(v, cmd.Flags().Lookup("idle-timeout"), cli.KeyIdleTimeout)
	return cmd
}
