package main

import (
	"github.com/aretw0/bargain/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newArchiveCmd(v *viper.Viper) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage archived negotiation transcripts",
		Long:  `List, inspect, and remove the transcripts of closed negotiations in the configured archive.`,
	}

	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List archived negotiations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := newHost(cmd, v)
			if err != nil {
				return err
			}
			defer host.Close()
			return cli.ListTranscripts(cmd.Context(), host.Sessions.Archive(), cmd.OutOrStdout())
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect <session-id>",
		Short: "Print the transcript of a negotiation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := newHost(cmd, v)
			if err != nil {
				return err
			}
			defer host.Close()
			return cli.InspectTranscript(cmd.Context(), host.Sessions.Archive(), args[0], cmd.OutOrStdout())
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <session-id>...",
		Short: "Remove one or more transcripts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := newHost(cmd, v)
			if err != nil {
				return err
			}
			defer host.Close()
			return cli.RemoveTranscripts(cmd.Context(), host.Sessions.Archive(), args, cmd.OutOrStdout())
		},
	}

	archiveCmd.AddCommand(lsCmd, inspectCmd, rmCmd)
	return archiveCmd
}
