// Copyright 2025 The axfor Authors
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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pollStore/internal/app"
	"pollStore/pkg/config"
	"pollStore/pkg/log"
	"pollStore/pkg/reliability"
)

type options struct {
	configPath string
	envFile    string
	listen     string
	dataDir    string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	m := &cobra.Command{
		Use:          "pollstore",
		Short:        "Multi-client survey and vote server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	m.Flags().StringVar(&opts.configPath, "config", "configs/pollstore.yaml", "YAML configuration file (defaults are used when it does not exist)")
	m.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before environment overrides")
	m.Flags().StringVar(&opts.listen, "listen", "", "client listen address, overrides server.listen_address")
	m.Flags().StringVar(&opts.dataDir, "data-dir", "", "record directory, overrides server.data_dir")
	return m
}

// loadConfig applies, in order: defaults, the config file, the dotenv file
// and environment, then flags that were set explicitly.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfigOrDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.ListenAddress = opts.listen
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.Server.DataDir = opts.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	if err := log.InitFromConfig(&cfg.Server.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer log.Sync()

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	log.Info("pollstore started",
		log.String("address", a.Addr().String()),
		log.Bool("prometheus", cfg.Server.Monitoring.EnablePrometheus),
		log.Component("main"))

	gs := reliability.NewGracefulShutdown(cfg.Server.Reliability.ShutdownTimeout)
	a.RegisterShutdown(gs)
	gs.Wait()
	return nil
}
