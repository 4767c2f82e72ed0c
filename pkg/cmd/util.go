// Copyright Consensys Software Inc.
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
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// terminalWidth returns the current width of stderr, falling back to 80
// columns when stderr isn't a terminal (redirected to a file, piped, or
// running under a non-interactive harness).
func terminalWidth() int {
	fd := int(os.Stderr.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 80
	}

	return width
}

// printBanner writes a title rule to stderr, padded with '-' out to the
// terminal's width, so progress banners don't wrap awkwardly under
// redirection the way a fixed-width literal would.
func printBanner(title string) {
	width := terminalWidth()
	if len(title)+4 >= width {
		fmt.Fprintln(os.Stderr, title)
		return
	}

	fmt.Fprintln(os.Stderr, "-- "+title+" "+strings.Repeat("-", width-len(title)-4))
}

// GetFlag reads an expected boolean flag, or exits with code 2 if it was
// never registered — a malformed init() is a programming error, not a
// user-facing one.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString reads an expected string flag.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// openInput opens path for reading, treating "-" as stdin per spec's CLI
// surface convention.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(path)
}

// openOutput opens path for writing, treating "-" as stderr when
// stderrHyphen is set (the convention for non-IR outputs) and as stdout
// otherwise.
func openOutput(path string, stderrHyphen bool) (io.WriteCloser, error) {
	if path == "-" {
		if stderrHyphen {
			return nopWriteCloser{os.Stderr}, nil
		}

		return nopWriteCloser{os.Stdout}, nil
	}

	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
