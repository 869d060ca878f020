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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ifdef/cmd/ifdef/opts"
)

func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var (
		flags runFlags
		diff  bool
	)

	cmd := &cobra.Command{
		Use:   "check [globs...]",
		Short: "Report outputs a run would change",
		Long: `Check rewrites every input without writing anything.
It fails when any output (or source map) would be created or changed,
which makes it usable in CI to verify generated files are up to date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "check").Logger().WithContext(cmd.Context())

			cfg, err := o.Load(ctx)
			if err != nil {
				return err
			}

			console := o.Console(ctx, cmd.OutOrStdout())
			runner, err := newRunner(ctx, cfg, console, flags, args, true)
			if err != nil {
				return err
			}

			report, err := runOnce(ctx, cfg, console, runner, flags.outDir, true)
			printFailures(console, cfg.Dir(), report)
			if err != nil {
				return errors.Errorf("checking: %w", err)
			}

			changed := report.Changed()
			if len(changed) == 0 {
				console.Success("all outputs are up to date")
				return nil
			}

			if diff {
				for _, f := range changed {
					WriteDiff(cmd.OutOrStdout(), relPath(cfg.Dir(), f.Output), f.Previous, f.Content)
				}
			}

			// source maps are tracked next to their outputs
			tracked, err := runner.Status().ListFiles(ctx)
			if err != nil {
				return errors.Errorf("listing outputs: %w", err)
			}
			for _, info := range tracked {
				if info.Status.Changed() {
					console.Infof("%s (%s)", relPath(cfg.Dir(), info.Path), info.Status)
				}
			}

			console.Warningf("%d outputs would change", len(changed))
			return ErrOutOfDate
		},
	}

	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "", "compare against this directory instead of the configured one")
	cmd.Flags().BoolVar(&diff, "diff", true, "print a line diff for every changed output")
	return cmd
}
