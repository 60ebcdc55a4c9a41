/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/dgmesh/InputParameters"
	"github.com/notargets/dgmesh/mesh"
	"github.com/notargets/dgmesh/readfiles"
)

type BuildOptions struct {
	GridFile  string
	ICFile    string
	Order     int
	Verbose   bool
	ProfileIt bool
}

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the DG geometric mesh representation from a grid file",
	Long: `
Reads an SU2 format grid, canonicalizes faces, computes metric terms and
prints the resulting mesh statistics.

dgmesh build -F mesh.su2`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		bo := &BuildOptions{}
		if bo.GridFile, err = cmd.Flags().GetString("gridFile"); err != nil {
			panic(err)
		}
		if bo.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		bo.Order, _ = cmd.Flags().GetInt("order")
		bo.Verbose, _ = cmd.Flags().GetBool("verbose")
		bo.ProfileIt, _ = cmd.Flags().GetBool("profile")
		mp := processInput(bo)
		RunBuild(bo, mp)
	},
}

func processInput(bo *BuildOptions) (mp *InputParameters.MeshParameters) {
	mp = &InputParameters.MeshParameters{
		MeshFile:        bo.GridFile,
		PolynomialOrder: bo.Order,
	}
	if len(bo.ICFile) != 0 {
		data, err := ioutil.ReadFile(bo.ICFile)
		if err != nil {
			panic(err)
		}
		if err = mp.Parse(data); err != nil {
			panic(err)
		}
		if len(mp.MeshFile) == 0 {
			mp.MeshFile = bo.GridFile
		}
	}
	if len(mp.MeshFile) == 0 {
		err := fmt.Errorf("must supply a grid file (-F, --gridFile) in .su2 format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Test Case"
MeshFile: mesh.su2
PolynomialOrder: 2
Tolerance: 1.e-10
########################################
`
		fmt.Printf("Example parameters file:%s\n", exampleFile)
		os.Exit(1)
	}
	if bo.Verbose {
		mp.Print()
	}
	return
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in SU2 (.su2) format")
	buildCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- MeshFile\n\t- PolynomialOrder\n\t- Tolerance")
	buildCmd.Flags().IntP("order", "n", 1, "solution polynomial order")
	buildCmd.Flags().BoolP("verbose", "v", false, "print the input parameters and build progress")
	buildCmd.Flags().Bool("profile", false, "write a CPU profile of the mesh build")
}

// applyBCs transfers per marker parameters from the input file onto the raw
// boundaries, in particular the periodic transform declarations the grid
// format itself does not carry
func applyBCs(mp *InputParameters.MeshParameters, raw *mesh.RawMesh) {
	for i := range raw.Boundaries {
		bd := &raw.Boundaries[i]
		params, ok := mp.BCs[bd.MarkerTag]
		if !ok {
			continue
		}
		if v, ok := params["periodicIndex"]; ok {
			bd.Periodic = true
			bd.PeriodIndex = int(v)
		}
		if v, ok := params["rotational"]; ok && v != 0 {
			bd.RotationalPeriod = true
		}
	}
}

func RunBuild(bo *BuildOptions, mp *InputParameters.MeshParameters) {
	if bo.ProfileIt {
		defer profile.Start().Stop()
	}
	raw := readfiles.ReadSU2(mp.MeshFile, mp.PolynomialOrder, bo.Verbose)
	raw.Tolerance = mp.Tolerance
	applyBCs(mp, raw)
	m, err := mesh.NewMesh(raw, mesh.Serial, nil)
	if err != nil {
		fmt.Printf("mesh build failed: %s\n", err.Error())
		os.Exit(1)
	}
	fmt.Printf("built mesh with %d elements, %d matching faces\n",
		m.NVolElemTot(), len(m.IntFaces))
}
