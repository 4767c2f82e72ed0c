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
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trailofbits/circuitous-go/pkg/circuit"
	"github.com/trailofbits/circuitous-go/pkg/printer/dot"
	"github.com/trailofbits/circuitous-go/pkg/printer/json"
	"github.com/trailofbits/circuitous-go/pkg/printer/python"
	"github.com/trailofbits/circuitous-go/pkg/printer/smt"
	"github.com/trailofbits/circuitous-go/pkg/serialize"
)

// ErrLifterUnavailable is returned for --binary_in: lifting machine code
// into circuit IR is an upstream concern this core never implements (spec
// §1's "out of scope" front end).
var ErrLifterUnavailable = errors.New("circuitous: lifting from --binary_in is not implemented by this core; supply --ir_in instead")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "load a circuit, optionally rewrite it, and emit the requested surface forms.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		binaryIn := GetString(cmd, "binary_in")
		irIn := GetString(cmd, "ir_in")

		if binaryIn == "" && irIn == "" {
			fmt.Println("circuitous: one of --binary_in or --ir_in is required")
			os.Exit(1)
		}

		if binaryIn != "" && irIn != "" {
			fmt.Println("circuitous: --binary_in and --ir_in are mutually exclusive")
			os.Exit(1)
		}

		g, err := loadGraph(binaryIn, irIn)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if log.IsLevelEnabled(log.DebugLevel) {
			printBanner(fmt.Sprintf("loaded %d nodes", g.NumNodes()))
			log.Debug(g.DebugDump())
		}

		if err := emitOutputs(cmd, g); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func loadGraph(binaryIn, irIn string) (*circuit.Graph, error) {
	if binaryIn != "" {
		return nil, ErrLifterUnavailable
	}

	f, err := openInput(irIn)
	if err != nil {
		return nil, fmt.Errorf("circuitous: %w", err)
	}

	defer f.Close()

	g, err := serialize.Read(f)
	if err != nil {
		return nil, fmt.Errorf("circuitous: %w", err)
	}

	return g, nil
}

func emitOutputs(cmd *cobra.Command, g *circuit.Graph) error {
	outputs := []struct {
		flag  string
		write func(w io.Writer) error
	}{
		{"ir_out", func(w io.Writer) error { return serialize.Write(w, g) }},
		{"dot_out", func(w io.Writer) error { return dot.Write(w, g) }},
		{"python_out", func(w io.Writer) error { return python.Write(w, g) }},
		{"smt_out", func(w io.Writer) error { return smt.Write(w, g) }},
		{"json_out", func(w io.Writer) error { return json.Write(w, g) }},
	}

	for _, out := range outputs {
		path := GetString(cmd, out.flag)
		if path == "" {
			continue
		}

		stderrHyphen := out.flag != "ir_out"

		f, err := openOutput(path, stderrHyphen)
		if err != nil {
			return fmt.Errorf("circuitous: opening %s: %w", out.flag, err)
		}

		if err := out.write(f); err != nil {
			f.Close()
			return fmt.Errorf("circuitous: writing %s: %w", out.flag, err)
		}

		if err := f.Close(); err != nil {
			return fmt.Errorf("circuitous: closing %s: %w", out.flag, err)
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("binary_in", "", "path to a binary instruction stream (hyphen for stdin); not implemented by this core")
	runCmd.Flags().String("ir_in", "", "path to a serialized circuit IR file (hyphen for stdin)")
	runCmd.Flags().String("arch", "", "target architecture name")
	runCmd.Flags().String("os", "", "target OS name")
	runCmd.Flags().String("ir_out", "", "write the (possibly rewritten) IR here (hyphen for stdout)")
	runCmd.Flags().String("dot_out", "", "write a Graphviz DOT rendering here (hyphen for stderr)")
	runCmd.Flags().String("python_out", "", "write a Python rendering here (hyphen for stderr)")
	runCmd.Flags().String("smt_out", "", "write an SMT-LIB2 rendering here (hyphen for stderr)")
	runCmd.Flags().String("json_out", "", "write a JSON rendering here (hyphen for stderr)")
}
