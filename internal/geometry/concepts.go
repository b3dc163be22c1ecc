package geometry

import "viz-engine/internal/math3d"

// Built-in concepts.
const (
	AtomicStructure   ConceptID = "Atomic Structure"
	MolecularBonding  ConceptID = "Molecular Bonding"
	DNADoubleHelix    ConceptID = "DNA Double Helix"
	CrystalStructures ConceptID = "Crystal Structures"
	WaveInterference  ConceptID = "Wave Interference"
	SolarSystem       ConceptID = "Solar System"
	CellStructure     ConceptID = "Cell Structure"
	MagneticField     ConceptID = "Magnetic Field"
	SimplePendulum    ConceptID = "Simple Pendulum"
	LightRefraction   ConceptID = "Light Refraction"
	SoundWaves        ConceptID = "Sound Waves"
	Photosynthesis    ConceptID = "Photosynthesis"
	ElectricCircuit   ConceptID = "Electric Circuit"
	StatesOfMatter    ConceptID = "States of Matter"
	HumanHeart        ConceptID = "Human Heart"
	EarthLayers       ConceptID = "Earth Layers"

	// DefaultConcept is the generic shape set used for unknown names.
	DefaultConcept ConceptID = "Geometric Shapes"
)

func spin(periodMs float32) *Animation {
	a := Rotate(math3d.UnitY, periodMs, 0)
	return &a
}

func registerBuiltins(l *Library) {
	l.Register(AtomicStructure, []string{"atom", "atoms", "bohr model", "atomic model", "electron shells"},
		Generator{Build: atomicStructure})
	l.Register(MolecularBonding, []string{"molecule", "molecules", "water molecule", "covalent bond", "chemical bonding"},
		Generator{Build: molecularBonding, Spin: spin(8000)})
	l.Register(DNADoubleHelix, []string{"dna", "double helix", "dna structure", "genetics", "genes"},
		Generator{Build: dnaHelix, Spin: spin(10000)})
	l.Register(CrystalStructures, []string{"crystal lattice", "crystal", "crystals", "salt crystal", "nacl", "ionic lattice"},
		Generator{Build: crystalLattice, Spin: spin(16000)})
	l.Register(WaveInterference, []string{"interference", "waves", "double slit", "superposition"},
		Generator{Build: waveInterference})
	l.Register(SolarSystem, []string{"planets", "planetary motion", "orbits", "solar"},
		Generator{Build: solarSystem})
	l.Register(CellStructure, []string{"cell", "animal cell", "biology cell", "organelles"},
		Generator{Build: cellStructure})
	l.Register(MagneticField, []string{"magnetism", "bar magnet", "magnetic field lines", "electromagnetism"},
		Generator{Build: magneticField})
	l.Register(SimplePendulum, []string{"pendulum", "harmonic motion", "oscillation", "shm"},
		Generator{Build: pendulum})
	l.Register(LightRefraction, []string{"refraction", "prism", "optics", "light spectrum", "dispersion"},
		Generator{Build: lightRefraction})
	l.Register(SoundWaves, []string{"sound", "acoustics", "sound propagation", "longitudinal waves"},
		Generator{Build: soundWaves})
	l.Register(Photosynthesis, []string{"chloroplast", "plant energy", "plants"},
		Generator{Build: photosynthesis})
	l.Register(ElectricCircuit, []string{"circuit", "electricity", "current", "simple circuit"},
		Generator{Build: electricCircuit})
	l.Register(StatesOfMatter, []string{"matter", "phases of matter", "solid liquid gas"},
		Generator{Build: statesOfMatter})
	l.Register(HumanHeart, []string{"heart", "cardiovascular system", "circulatory system"},
		Generator{Build: humanHeart})
	l.Register(EarthLayers, []string{"earth structure", "layers of the earth", "geology", "earth"},
		Generator{Build: earthLayers})
	l.Register(DefaultConcept, []string{"shapes", "geometry", "generic", "3d model"},
		Generator{Build: geometricShapes})
}

// geometricShapes is the fallback: a spinning box inside a ring, a pulsing sphere above,
// a cone below and eight satellites on an equatorial orbit.
func geometricShapes() []Primitive {
	ps := []Primitive{
		Box("box", math3d.Zero, math3d.V3(1, 1, 1), math3d.Hex("#4dabf7")).
			With(Rotate(math3d.UnitY, 6000, 0)),
		Ring("ring", math3d.Zero, math3d.UnitZ, 1.6, 0.06, math3d.Hex("#ff922b")).
			With(Rotate(math3d.UnitX, 8000, 0)),
		Sphere("sphere", math3d.V3(0, 1.6, 0), 0.35, math3d.Hex("#51cf66")).
			With(Pulse(0.2, 1500, 0)),
		Cone("cone", math3d.V3(0, -1.6, 0), math3d.UnitY, 0.4, 0.7, math3d.Hex("#f06595")).
			With(Rotate(math3d.UnitY, 5000, 0)),
	}
	const satellites = 8
	for i := 0; i < satellites; i++ {
		ps = append(ps, Point("satellite", math3d.Zero, 0.1, math3d.Spectrum(i, satellites)).
			With(Orbit(math3d.UnitY, 2.4, 7000, math3d.Tau*float32(i)/satellites)))
	}
	return ps
}
