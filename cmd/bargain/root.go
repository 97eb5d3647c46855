package main

import (
	"github.com/aretw0/bargain/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCmd builds the command tree. Every command shares one viper instance
// so flags, BARGAIN_* variables and the config file resolve the same way.
func newRootCmd() *cobra.Command {
	v := cli.NewViper()

	rootCmd := &cobra.Command{
		Use:   "bargain",
		Short: "Bargain is a rule-driven price negotiation engine",
		Long: `Bargain negotiates a price with a buyer over several rounds. A finite state
machine and a concession calculator decide every counter offer; replies only
ever quote the price the engine allows.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./bargain.{yaml,toml,json} when present)")
	flags.String("profile", "", "Negotiation profile file (YAML, TOML or JSON)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("archive", cli.BackendMemory, "Transcript archive: memory, file, redis, sqlite or mysql")
	flags.String("archive-path", ".bargain/transcripts", "Directory of the file archive")
	flags.String("archive-dsn", "", "DSN of the sqlite or mysql archive")
	flags.Duration("archive-ttl", 0, "Retention of redis transcripts (0 keeps them)")
	flags.String("redis-addr", "localhost:6379", "Redis address of the redis archive")

	bind(v, flags.Lookup("profile"), cli.KeyProfile)
	bind(v, flags.Lookup("log-level"), cli.KeyLogLevel)
	bind(v, flags.Lookup("log-format"), cli.KeyLogFormat)
	bind(v, flags.Lookup("archive"), cli.KeyArchiveBackend)
	bind(v, flags.Lookup("archive-path"), cli.KeyArchivePath)
	bind(v, flags.Lookup("archive-dsn"), cli.KeyArchiveDSN)
	bind(v, flags.Lookup("archive-ttl"), cli.KeyArchiveTTL)
	bind(v, flags.Lookup("redis-addr"), cli.KeyRedisAddr)

	rootCmd.AddCommand(
		newServeCmd(v),
		newChatCmd(v),
		newMCPCmd(v),
		newValidateCmd(),
		newArchiveCmd(v),
		newVersionCmd(),
	)
	return rootCmd
}

// newHost resolves the settings of cmd and opens the shared resources.
// Callers must Close the host.
func newHost(cmd *cobra.Command, v *viper.Viper) (*cli.Host, error) {
	configFile, _ := cmd.Flags().GetString("config")
	settings, err := cli.LoadSettings(v, configFile)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(settings)
	if err != nil {
		return nil, err
	}
	return cli.NewHost(cmd.Context(), settings, logger)
}
