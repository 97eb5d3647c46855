package main

import (
	"fmt"

	"github.com/aretw0/bargain/pkg/profile"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <profile>",
		Short: "Check a negotiation profile",
		Long: `Loads a YAML, TOML or JSON profile over the defaults and reports every
invariant it breaks (floors above the list price, a non-decreasing step schedule...).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := profile.Load(args[0])
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			format, _ := cmd.Flags().GetString("print")
			if format == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Profile is valid! ✅")
				return nil
			}

			data, err := profile.Marshal(cfg, profile.Format(format))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().String("print", "", "Print the resolved profile as yaml, toml or json")
	return cmd
}
