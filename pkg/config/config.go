// Copyright the go-mwp authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads analyzer settings from an optional TOML file.
// Command-line flags take precedence over file values; the file merely
// provides per-project defaults.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Filename is the config file looked up in the working directory.
const Filename = "mwp.toml"

// Config carries the analyzer settings a project can pin in its
// config file.
type Config struct {
	// Strict rejects functions containing unsupported syntax.
	Strict bool `toml:"strict"`
	// Fin always runs analysis to completion.
	Fin bool `toml:"fin"`
	// LogLevel is one of "silent", "info" or "debug".  It is read from
	// the file, but the analyze command sets logging from its flags.
	LogLevel string `toml:"log_level"`
	// OutDir receives the result JSON files.
	OutDir string `toml:"out_dir"`
	// NoSave disables result files entirely.
	NoSave bool `toml:"no_save"`
	// NoTime is read from the file; log timestamps follow the --no_time
	// flag only.
	NoTime bool `toml:"no_time"`
}

// Default returns the settings used in the absence of a config file.
func Default() Config {
	return Config{
		LogLevel: "info",
		OutDir:   "output",
	}
}

// Load reads the config file at the given path, falling back to the
// defaults when the file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	//
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	//
	if err != nil {
		return cfg, err
	}
	//
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New("unknown config key " + undecoded[0].String())
	}
	//
	return cfg, nil
}

// LoadDir looks for the config file in the given directory (the
// working directory when empty).
func LoadDir(dir string) (Config, error) {
	if dir == "" {
		var err error
		//
		if dir, err = os.Getwd(); err != nil {
			return Default(), err
		}
	}
	//
	return Load(filepath.Join(dir, Filename))
}
