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
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing
// via "go install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "go-mwp",
	Short: "A static analyzer deciding polynomial growth bounds.",
	Long: "A static analyzer deciding, for each program variable, whether " +
		"its final value is bounded by a polynomial in the input values.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("go-mwp ")
			if Version != "" {
				// Built via "make"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				// Unknown, perhaps "go run"
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().Bool("silent", false, "only report errors")
	rootCmd.PersistentFlags().Bool("info", false, "report analysis progress")
	rootCmd.PersistentFlags().Bool("debug", false, "report everything")
	rootCmd.PersistentFlags().Bool("no_time", false, "omit timestamps from log output")
}

// configureLogging wires the terminal log options into logrus.  Colors
// engage only when stderr is a real terminal.
func configureLogging(cmd *cobra.Command) {
	switch {
	case GetFlag(cmd, "debug"):
		log.SetLevel(log.DebugLevel)
	case GetFlag(cmd, "silent"):
		log.SetLevel(log.ErrorLevel)
	default:
		// --info is the default verbosity
		log.SetLevel(log.InfoLevel)
	}
	//
	log.SetFormatter(&log.TextFormatter{
		ForceColors:      isatty.IsTerminal(os.Stderr.Fd()),
		FullTimestamp:    !GetFlag(cmd, "no_time"),
		DisableTimestamp: GetFlag(cmd, "no_time"),
	})
}

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}
