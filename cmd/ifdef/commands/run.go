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

func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [globs...]",
		Short: "Rewrite the configured inputs",
		Long: `Run rewrites every input once.
It will:
1. Load the config and compile its patterns
2. Expand the input globs
3. Rewrite each input and write it (with a .map) in place or below out_dir
4. Print a summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())

			cfg, err := o.Load(ctx)
			if err != nil {
				return err
			}

			console := o.Console(ctx, cmd.OutOrStdout())
			runner, err := newRunner(ctx, cfg, console, flags, args, false)
			if err != nil {
				return err
			}

			report, err := runOnce(ctx, cfg, console, runner, flags.outDir, false)
			printFailures(console, cfg.Dir(), report)
			if err != nil {
				return errors.Errorf("running: %w", err)
			}

			console.Success(runner.Status().FormatSummary())
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "", "write outputs below this directory instead of the configured one")
	return cmd
}
