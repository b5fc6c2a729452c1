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
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/statycc/go-mwp/pkg/analysis"
	"github.com/statycc/go-mwp/pkg/config"
	"github.com/statycc/go-mwp/pkg/lang"
)

// analyzeCmd runs the mwp analysis on a serialized program tree.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [program file]",
	Short: "Analyze a program for polynomial growth bounds.",
	Long: "Given a program tree in JSON (or YAML) form, decide for every " +
		"function whether each variable's final value is polynomially " +
		"bounded in the inputs, and report the symbolic mwp-bounds.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		cfg, err := config.LoadDir("")
		//
		if err != nil {
			log.Errorf("config: %v", err)
			os.Exit(1)
		}
		// flags win over config file values
		if cmd.Flags().Changed("strict") {
			cfg.Strict = GetFlag(cmd, "strict")
		}
		//
		if cmd.Flags().Changed("fin") {
			cfg.Fin = GetFlag(cmd, "fin")
		}
		//
		if cmd.Flags().Changed("no_save") {
			cfg.NoSave = GetFlag(cmd, "no_save")
		}
		//
		if cmd.Flags().Changed("out") {
			cfg.OutDir = GetString(cmd, "out")
		}
		//
		os.Exit(runAnalysis(args[0], cfg))
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Bool("strict", false,
		"reject functions containing unsupported syntax")
	analyzeCmd.Flags().Bool("fin", false,
		"always run analysis to completion")
	analyzeCmd.Flags().Bool("no_save", false,
		"do not write a result file")
	analyzeCmd.Flags().StringP("out", "o", "output",
		"directory for result files")
}

// runAnalysis decodes the program, analyzes it and reports results,
// returning the process exit code.
func runAnalysis(filename string, cfg config.Config) int {
	prog, err := lang.DecodeFile(filename)
	//
	if err != nil {
		log.Errorf("cannot read program: %v", err)
		//
		return 1
	}
	//
	analyzer := analysis.New(analysis.Options{
		Strict: cfg.Strict,
		Fin:    cfg.Fin,
	})
	result := analyzer.Program(prog)
	result.Program.Path = filename
	//
	for _, fr := range result.Functions {
		printFunction(fr)
		//
		if fr.Error != "" {
			err = fmt.Errorf("%s: %s", fr.Name, fr.Error)
		}
	}
	//
	if err != nil {
		log.Error(err)
		//
		return 1
	}
	//
	if !cfg.NoSave {
		if werr := saveResult(filename, cfg.OutDir, result); werr != nil {
			log.Errorf("cannot save result: %v", werr)
			//
			return 1
		}
	}
	//
	return 0
}

// saveResult writes the result JSON next to the input program's name
// under the output directory.
func saveResult(input, outDir string, result *analysis.Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	//
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	outfile := filepath.Join(outDir, stem+".json")
	data, err := json.MarshalIndent(result, "", "  ")
	//
	if err != nil {
		return err
	}
	//
	if err := os.WriteFile(outfile, data, 0o644); err != nil {
		return err
	}
	//
	log.Infof("saved result in %s", outfile)
	//
	return nil
}
