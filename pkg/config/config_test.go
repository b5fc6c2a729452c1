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
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Config_Missing_File_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), Filename))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func Test_Config_Load(t *testing.T) {
	dir := t.TempDir()
	data := []byte("strict = true\nfin = true\nlog_level = \"debug\"\n" +
		"out_dir = \"results\"\n")
	//
	if err := os.WriteFile(
		filepath.Join(dir, Filename), data, 0o644); err != nil {
		t.Fatal(err)
	}
	//
	cfg, err := LoadDir(dir)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if !cfg.Strict || !cfg.Fin || cfg.LogLevel != "debug" ||
		cfg.OutDir != "results" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func Test_Config_Unknown_Key(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename)
	//
	if err := os.WriteFile(path, []byte("mystery = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	//
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown key")
	}
}
