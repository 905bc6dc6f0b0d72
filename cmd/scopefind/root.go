package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/altinukshini/scopefind/internal/config"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"max-matches":   config.KeyMaxMatches,
	"max-file-size": config.KeyMaxFileSize,
	"log-file":      config.KeyLogFile,
	"verbose":       config.KeyVerbose,
}

// newRootCmd builds the CLI. run starts the UI with the validated
// configuration.
func newRootCmd(run func(config.Config) error) *cobra.Command {
	var (
		configFile string
		noWatch    bool
		dumpConfig bool
	)
	d := config.Defaults()

	cmd := &cobra.Command{
		Use:   "scopefind [dir]",
		Short: "Search a directory tree for literal text as you type",
		Long: `scopefind searches every eligible file below dir (default: the current
directory) for a literal, case-sensitive pattern and streams matching lines
into an interactive table while you type.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(configFile)
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			if len(args) == 1 {
				v.Set(config.KeyRoot, args[0])
			}

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if noWatch {
				cfg.Watch = false
			}
			if dumpConfig {
				return cfg.Dump(cmd.OutOrStdout())
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}
	cmd.SetVersionTemplate("scopefind {{.Version}}\n")

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/scopefind/config.yaml)")
	flags.Int("max-matches", d.MaxMatches, "stop a search after this many matches")
	flags.Int64("max-file-size", d.MaxFileSize, "skip larger files when scanning all files (bytes)")
	flags.String("log-file", "", "write logs to this file")
	flags.Bool("verbose", false, "log debug messages")
	flags.BoolVar(&noWatch, "no-watch", false, "do not watch the tree for changes")
	flags.BoolVar(&dumpConfig, "dump-config", false, "print the effective configuration as YAML and exit")
	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
