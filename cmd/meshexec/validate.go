// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dark-Alex-17/meshexec/pkg/cmdtree"
)

// newValidateCmd loads and fully validates a command tree without
// starting the gateway, then prints the root help text — a dry run of
// the loader and help renderer a user can run before restarting the
// mesh gateway with an edited config.
func newValidateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the command tree without starting the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString(viperKeyConfig)
			if path == "" {
				return &configLoadError{err: fmt.Errorf("no config file given: set --%s or %s_CONFIG_FILE", flagConfig, envPrefix)}
			}

			root, err := cmdtree.Load(path)
			if err != nil {
				return &configLoadError{err: err}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), cmdtree.RootHelp(root.Commands))
			return nil
		},
	}
}
