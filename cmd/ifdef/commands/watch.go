// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/ifdef/cmd/ifdef/opts"
	"github.com/walteh/ifdef/pkg/operation"
)

func NewWatchCmd(o *opts.RootOpts) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "watch [globs...]",
		Short: "Rewrite inputs whenever they change",
		Long: `Watch runs once and then again every time a file below the config
directory changes. Inputs that did not change since the last run are
skipped. Stop it with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = zerolog.Ctx(ctx).With().Str("command", "watch").Logger().WithContext(ctx)

			cfg, err := o.Load(ctx)
			if err != nil {
				return err
			}

			console := o.Console(ctx, cmd.OutOrStdout())
			runner, err := newRunner(ctx, cfg, console, flags, args, false)
			if err != nil {
				return err
			}

			console.Header("watching " + cfg.Dir())

			return runner.Watch(ctx, func(report *operation.Report, err error) {
				if ctx.Err() != nil {
					return
				}
				printFailures(console, cfg.Dir(), report)
				if err != nil {
					console.Error(err.Error())
					return
				}
				if n := len(report.Changed()); n > 0 {
					console.Successf("%d outputs updated", n)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "", "write outputs below this directory instead of the configured one")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", operation.DefaultDebounce, "quiet period before a change triggers a run")
	return cmd
}
