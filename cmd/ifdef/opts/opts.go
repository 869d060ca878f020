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

package opts

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ifdef/pkg/config"
	"github.com/walteh/ifdef/pkg/log"
)

// RootOpts holds the global flags shared by every command.
type RootOpts struct {
	ConfigFile string
	Debug      bool
	Quiet      bool
}

// Load reads the configuration named by --config, or the first default
// config file in the working directory.
func (o *RootOpts) Load(ctx context.Context) (*config.Config, error) {
	path := o.ConfigFile
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Errorf("getting working directory: %w", err)
		}
		path, err = config.Find(wd)
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// Console builds the user facing logger. --quiet keeps only outcomes on the
// console; the zerolog side is unaffected.
func (o *RootOpts) Console(ctx context.Context, w io.Writer) *log.Logger {
	console := log.NewWithZerolog(w, *zerolog.Ctx(ctx))
	console.SetQuiet(o.Quiet)
	return console
}
