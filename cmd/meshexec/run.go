// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Dark-Alex-17/meshexec/internal/gateway"
	"github.com/Dark-Alex-17/meshexec/internal/transport"
	"github.com/Dark-Alex-17/meshexec/pkg/cmdtree"
)

// newRunCmd starts the gateway event loop (spec.md §5) and blocks until
// a shutdown signal or a fatal error.
func newRunCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the mesh gateway event loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateway(cmd.Context(), v)
		},
	}
}

func runGateway(ctx context.Context, v *viper.Viper) error {
	logger := newLogger(v, "meshexec")

	path := v.GetString(viperKeyConfig)
	if path == "" {
		return &configLoadError{err: fmt.Errorf("no config file given: set --%s or %s_CONFIG_FILE", flagConfig, envPrefix)}
	}

	root, err := cmdtree.Load(path)
	if err != nil {
		return &configLoadError{err: err}
	}

	// The serial Meshtastic driver is an external collaborator (spec.md
	// §1) with no implementation in this module; meshexec run bridges
	// its own stdin/stdout as a stand-in transport so the pipeline has
	// something concrete to run against.
	tr := transport.NewStdio(os.Stdin, os.Stdout, root.Channel)

	gw := gateway.New(root, tr, logger, nil)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return gw.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		gw.Stop()
		return nil
	})
	g.Go(func() error {
		return gw.Wait()
	})

	if err := g.Wait(); err != nil {
		return &transportOpenError{err: err}
	}
	return nil
}
