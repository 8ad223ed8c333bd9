/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command boothplan manages booth layout documents from the shell: create,
// inspect, validate, export and pull remote booth groups into a layout.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"boothplan/internal/config"
	"boothplan/internal/crash"
	applog "boothplan/internal/log"
	"boothplan/internal/textlayout"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	cfg   config.AppConfig
	token string
	log   *slog.Logger
	lay   textlayout.Layouter
}

func main() {
	defer crash.Recover(nil, nil)
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		_ = applog.Close()
		os.Exit(1)
	}
	_ = applog.Close()
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "boothplan",
		Short:         "Booth layout documents: create, inspect, validate and export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.AddCommand(
		newVersionCommand(),
		newInitCommand(a),
		newInfoCommand(a),
		newCheckCommand(a),
		newExportCommand(a),
		newImportRemoteCommand(a),
		newHistoryCommand(a),
		newTokenCommand(),
	)
	return root
}

// setup loads the user config and initializes logging. A broken config
// file is reported and the defaults are used.
func (a *app) setup(stderr io.Writer) error {
	cfg, token, err := config.Load()
	opts := logOptions(cfg.Logging)
	opts.Writer = stderr
	applog.Init(opts)
	a.log = applog.WithComponent("cli")
	if err != nil {
		a.log.Warn("config not loaded, using defaults", slog.Any("err", err))
	}
	a.cfg, a.token = cfg, token
	return nil
}

// layouter loads the configured fonts on first use.
func (a *app) layouter() (textlayout.Layouter, error) {
	if a.lay != nil {
		return a.lay, nil
	}
	lay, err := textLayouter(a.cfg.Text)
	if err != nil {
		return nil, err
	}
	a.lay = lay
	return lay, nil
}
