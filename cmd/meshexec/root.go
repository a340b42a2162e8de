// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix        = "MESHEXEC"
	flagConfig       = "config"
	flagLogLevel     = "log-level"
	viperKeyConfig   = "config"
	viperKeyLogLevel = "log-level"
)

// exitCodeFor maps the taxonomy in spec.md §6 to a process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case isConfigLoadError(err):
		return 1
	case isTransportOpenError(err):
		return 2
	default:
		return 1
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "meshexec",
		Short:         "Remote command-execution gateway bridging a LoRa mesh and a local shell",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringP(flagConfig, "c", "", "path to the YAML command tree (env: MESHEXEC_CONFIG_FILE)")
	root.PersistentFlags().StringP(flagLogLevel, "l", "info", "log level: debug, info, warn, error (env: MESHEXEC_LOG_LEVEL)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()

		if err := v.BindEnv(viperKeyConfig, envPrefix+"_CONFIG_FILE"); err != nil {
			return fmt.Errorf("bind %s_CONFIG_FILE: %w", envPrefix, err)
		}
		if err := v.BindPFlag(viperKeyConfig, root.PersistentFlags().Lookup(flagConfig)); err != nil {
			return fmt.Errorf("bind --%s: %w", flagConfig, err)
		}
		if err := v.BindPFlag(viperKeyLogLevel, root.PersistentFlags().Lookup(flagLogLevel)); err != nil {
			return fmt.Errorf("bind --%s: %w", flagLogLevel, err)
		}
		return nil
	}

	root.AddCommand(newRunCmd(v), newValidateCmd(v))
	return root
}

// newLogger constructs the process-wide logger at the level bound in v,
// per the teacher's log.NewWithOptions(..., log.Options{Prefix: ...})
// convention in internal/sshserver/server.go.
func newLogger(v *viper.Viper, prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: prefix})
	level, err := log.ParseLevel(v.GetString(viperKeyLogLevel))
	if err != nil {
		logger.Warn("invalid log level, defaulting to info", "value", v.GetString(viperKeyLogLevel))
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
