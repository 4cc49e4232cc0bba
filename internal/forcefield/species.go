// Package forcefield holds the coarse-grained BMIM PF6 parameter tables and
// the pair combination rules built from them.
package forcefield

import "gonum.org/v1/gonum/spatial/r3"

// Species is one row of the parameter table.
type Species struct {
	Name           string
	Short          string
	Type           int
	Charge         float64
	Mass           float64
	Sigma          float64
	Epsilon        float64
	Polarizability float64
}

// Particle type codes.
const (
	TypePF6 = iota
	TypeC1
	TypeC2
	TypeC3
	TypeCOM
	TypePF6Drude
	TypeC1Drude
	TypeC2Drude
	TypeC3Drude
	NumTypes
)

// CutoffSigmaFactor scales each species' sigma to its LJ cutoff.
const CutoffSigmaFactor = 2.5

var shortNames = [NumTypes]string{"PF6", "IM", "BU", "ME", "COM", "PF6_D", "IM_D", "BU_D", "ME_D"}

var typeNames = [NumTypes]string{
	"PF6", "BMIM_C1", "BMIM_C2", "BMIM_C3", "BMIM_COM",
	"PF6_D", "BMIM_C1_D", "BMIM_C2_D", "BMIM_C3_D",
}

// ShortName is the label written to trajectories for a type code.
func ShortName(t int) string {
	if t < 0 || t >= NumTypes {
		return "X"
	}
	return shortNames[t]
}

// TypeName is the long species name of a type code.
func TypeName(t int) string {
	if t < 0 || t >= NumTypes {
		return ""
	}
	return typeNames[t]
}

// DrudeType returns the Drude shell type of a polarizable core type.
func DrudeType(core int) (int, bool) {
	switch core {
	case TypePF6:
		return TypePF6Drude, true
	case TypeC1:
		return TypeC1Drude, true
	case TypeC2:
		return TypeC2Drude, true
	case TypeC3:
		return TypeC3Drude, true
	}
	return 0, false
}

// CationSite places one bead of the rigid BMIM cation relative to its center
// of mass.
type CationSite struct {
	Type   int
	Offset r3.Vec
}

// CationSites lists the BMIM beads in the order they are created.
var CationSites = []CationSite{
	{Type: TypeC1, Offset: r3.Vec{X: 0, Y: -0.527, Z: 1.365}},
	{Type: TypeC2, Offset: r3.Vec{X: 0, Y: 1.641, Z: 2.987}},
	{Type: TypeC3, Offset: r3.Vec{X: 0, Y: 0.187, Z: -2.389}},
}

// CationInertia is the principal rotational inertia of the BMIM center.
var CationInertia = r3.Vec{X: 646.284, Y: 585.158, Z: 61.126}

func defaultSpecies() []Species {
	s := []Species{
		{Name: "PF6", Type: TypePF6, Charge: -0.78, Mass: 144.96, Sigma: 5.06, Epsilon: 2.56, Polarizability: 4.653},
		{Name: "BMIM_C1", Type: TypeC1, Charge: 0.4374, Mass: 67.07, Sigma: 4.38, Epsilon: 2.56, Polarizability: 5.693},
		{Name: "BMIM_C2", Type: TypeC2, Charge: 0.1578, Mass: 15.04, Sigma: 3.41, Epsilon: 0.36, Polarizability: 2.103},
		{Name: "BMIM_C3", Type: TypeC3, Charge: 0.1848, Mass: 57.12, Sigma: 5.04, Epsilon: 1.83, Polarizability: 7.409},
		{Name: "BMIM_COM", Type: TypeCOM},
	}
	s[TypeCOM].Mass = s[TypeC1].Mass + s[TypeC2].Mass + s[TypeC3].Mass
	for i := range s {
		s[i].Short = shortNames[s[i].Type]
	}
	return s
}
