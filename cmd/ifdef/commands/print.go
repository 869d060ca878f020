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
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ifdef/cmd/ifdef/opts"
)

func NewPrintCmd(o *opts.RootOpts) *cobra.Command {
	var mapFile string

	cmd := &cobra.Command{
		Use:   "print FILE",
		Short: "Rewrite one file and print the result",
		Long: `Print rewrites a single file with the configured patterns and writes
the result to stdout. Files the patterns do not touch are printed as is.
The file does not have to match the configured inputs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "print").Logger().WithContext(cmd.Context())

			cfg, err := o.Load(ctx)
			if err != nil {
				return err
			}

			engine, err := cfg.NewEngine(ctx, o.Console(ctx, cmd.ErrOrStderr()).Verbose)
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return errors.Errorf("resolving %s: %w", args[0], err)
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return errors.Errorf("reading input: %w", err)
			}

			res, err := engine.Rewrite(ctx, string(raw), path)
			if err != nil {
				return errors.Errorf("rewriting %s: %w", args[0], err)
			}
			if res == nil {
				_, err = cmd.OutOrStdout().Write(raw)
				return err
			}

			if _, err := cmd.OutOrStdout().Write([]byte(res.Text)); err != nil {
				return err
			}

			if mapFile != "" && res.Map != nil {
				data, err := res.Map.EncodeV3(res.Text, filepath.Base(path))
				if err != nil {
					return err
				}
				if err := os.WriteFile(mapFile, data, 0644); err != nil {
					return errors.Errorf("writing source map: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mapFile, "map", "", "also write the source map to this file")
	return cmd
}
