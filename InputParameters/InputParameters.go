package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type MeshParameters struct {
	Title           string                        `yaml:"Title"`
	MeshFile        string                        `yaml:"MeshFile"`
	PolynomialOrder int                           `yaml:"PolynomialOrder"`
	Tolerance       float64                       `yaml:"Tolerance"`
	BCs             map[string]map[string]float64 `yaml:"BCs"` // First key is the marker tag, second is parameter name
}

func (mp *MeshParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, mp); err != nil {
		return err
	}
	if mp.PolynomialOrder == 0 {
		mp.PolynomialOrder = 1
	}
	return nil
}

func (mp *MeshParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", mp.Title)
	fmt.Printf("[%s]\t\t= Mesh File\n", mp.MeshFile)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", mp.PolynomialOrder)
	fmt.Printf("%8.2e\t\t= Point Matching Tolerance\n", mp.Tolerance)
	keys := make([]string, len(mp.BCs))
	i := 0
	for k := range mp.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, mp.BCs[key])
	}
}
