// Package units holds the unit system of the coarse-grained model: lengths in
// Angstrom, energies in kJ/mol, masses in g/mol and one MD time unit equal to
// 100 fs.
package units

import "math"

const (
	// FsToMDTime converts femtoseconds to MD time units.
	FsToMDTime = 1.0e-2

	// KB is the Boltzmann constant in kJ/mol/K.
	KB = 0.0083145

	// CoulombSI is e^2/(4 pi eps0) in Angstrom * K, multiplied by KB to get
	// Angstrom * kJ/mol.
	CoulombSI = 1.67101e5

	// RhoFactorBMIMPF6 converts ion pairs per cubic Angstrom into g/cm^3.
	RhoFactorBMIMPF6 = 0.003931

	// KDrude is the core-Drude spring constant in kJ/mol/A^2.
	KDrude = 4184.0

	// MassOscillator is the total mass shared by a core and its Drude.
	MassOscillator = 100.0
)

// TimeStep converts a time step in femtoseconds to MD units.
func TimeStep(fs float64) float64 { return fs * FsToMDTime }

// FsToNs converts femtoseconds to nanoseconds.
func FsToNs(fs float64) float64 { return fs * 1e-6 }

// KT returns the thermal energy in kJ/mol at temperature t (K).
func KT(t float64) float64 { return t * KB }

// CoulombPrefactor returns the electrostatic prefactor for relative
// permittivity epsR.
func CoulombPrefactor(epsR float64) float64 {
	return CoulombSI * KB / epsR
}

// BoxLength returns the edge of the cubic box holding nPairs ion pairs at
// the given mass density in g/cm^3.
func BoxLength(nPairs int, density float64) float64 {
	volume := float64(nPairs) / RhoFactorBMIMPF6 / density
	return math.Cbrt(volume)
}

// SpringPeriod is the period of free core-Drude oscillation.
func SpringPeriod(massDrude, k float64) float64 {
	return 2.0 * math.Pi * math.Sqrt(massDrude/k)
}

// ReducedMass of a Drude oscillator sharing MassOscillator.
func ReducedMass(massDrude float64) float64 {
	massCore := MassOscillator - massDrude
	return massDrude * massCore / MassOscillator
}

// GammaDrude is the friction applied to the core-Drude distance: one
// reduced mass per spring period.
func GammaDrude(massDrude, k float64) float64 {
	return ReducedMass(massDrude) / SpringPeriod(massDrude, k)
}
