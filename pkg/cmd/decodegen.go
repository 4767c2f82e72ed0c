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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trailofbits/circuitous-go/pkg/circuit"
	"github.com/trailofbits/circuitous-go/pkg/decoder"
	"github.com/trailofbits/circuitous-go/pkg/serialize"
)

var decodeGenCmd = &cobra.Command{
	Use:   "decode-gen",
	Short: "synthesize a bit-test decision tree from a circuit's decode contexts and emit C.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		irIn := GetString(cmd, "ir_in")
		if irIn == "" {
			fmt.Println("circuitous: --ir_in is required")
			os.Exit(1)
		}

		in, err := openInput(irIn)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		defer in.Close()

		g, err := serialize.Read(in)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		contexts, err := contextsFromGraph(g)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		tree, err := decoder.Build(contexts)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		out, err := openOutput(GetString(cmd, "ir_out"), false)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		defer out.Close()

		if _, err := out.Write([]byte(decoder.GenerateC(tree, contexts))); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

// contextsFromGraph walks every VerifyInstruction root in g, collecting
// its DecodeCondition descendants into one decoder.Context per
// instruction, per spec §4.5's decode-context model.
func contextsFromGraph(g *circuit.Graph) ([]*decoder.Context, error) {
	var contexts []*decoder.Context

	for id := 0; id < g.NumNodes(); id++ {
		if g.Kind(circuit.Id(id)) != circuit.KindVerifyInstruction {
			continue
		}

		vi := circuit.Id(id)

		conds := g.CollectDown(vi, circuit.KindDecodeCondition)

		length := -1

		ctxName := fmt.Sprintf("vi%d", vi)

		c, err := decoder.NewContext(ctxName, 1)
		if err != nil {
			return nil, err
		}

		for _, cond := range conds {
			constID, extID, ok := g.DecodeConditionParts(cond)
			if !ok {
				return nil, &circuit.ErrInvariantViolation{Detail: "malformed DecodeCondition in decode context"}
			}

			low, high, _ := g.ExtractRange(extID)
			value, _ := g.ConstantValue(constID)

			c.RequireBits(low, high, value)

			if length < 0 {
				length = low / 8
			}
		}

		if length > 0 {
			c.Length = length
		}

		contexts = append(contexts, c)
	}

	return contexts, nil
}

func init() {
	rootCmd.AddCommand(decodeGenCmd)
	decodeGenCmd.Flags().String("ir_in", "", "path to a serialized circuit IR file (hyphen for stdin)")
	decodeGenCmd.Flags().String("ir_out", "-", "path to write the generated C decoder (hyphen for stdout)")
}
