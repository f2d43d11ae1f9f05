package catalog

// Photometric parameters follow Mallama & Hilton (2018) simplified to a
// single phase polynomial per body; satellite H values are mean opposition
// magnitudes reduced to unit distances.
var defaultBodies = []Descriptor{
	{ID: "sun", Name: "Sun", Category: CategoryStar,
		Magnitude: MagnitudeModel{H: -26.74, Nominal: -26.7}, RadiusKm: 695700},

	{ID: "mercury", Name: "Mercury", Category: CategoryPlanet,
		Magnitude: MagnitudeModel{H: -0.42, C1: 0.0380, C2: -0.000273, C3: 0.000002, Nominal: -0.5}, RadiusKm: 2439.7},
	{ID: "venus", Name: "Venus", Category: CategoryPlanet,
		Magnitude: MagnitudeModel{H: -4.40, C1: 0.0009, C2: 0.000239, C3: -0.00000065, Nominal: -4.2}, RadiusKm: 6051.8},
	{ID: "mars", Name: "Mars", Category: CategoryPlanet,
		Magnitude: MagnitudeModel{H: -1.52, C1: 0.016, Nominal: 1.2}, RadiusKm: 3389.5},
	{ID: "jupiter", Name: "Jupiter", Category: CategoryPlanet,
		Magnitude: MagnitudeModel{H: -9.40, C1: 0.005, Nominal: -2.3}, RadiusKm: 69911},
	{ID: "saturn", Name: "Saturn", Category: CategoryPlanet,
		Magnitude: MagnitudeModel{H: -8.88, C1: 0.044, Nominal: 0.8}, RadiusKm: 58232},
	{ID: "uranus", Name: "Uranus", Category: CategoryPlanet,
		Magnitude: MagnitudeModel{H: -7.19, Nominal: 5.7}, RadiusKm: 25362},
	{ID: "neptune", Name: "Neptune", Category: CategoryPlanet,
		Magnitude: MagnitudeModel{H: -6.87, Nominal: 7.9}, RadiusKm: 24622},

	{ID: "moon", Name: "Moon", Category: CategoryMoon,
		Magnitude: MagnitudeModel{H: 0.21, C1: 0.026, C4: 4e-9, Nominal: -12.5}, RadiusKm: 1737.4},

	{ID: "pluto", Name: "Pluto", Category: CategoryDwarfPlanet,
		Magnitude: MagnitudeModel{H: -1.00, Nominal: 14.4}, RadiusKm: 1188.3},

	{ID: "io", Name: "Io", Category: CategoryMoon, Parent: "jupiter",
		Magnitude: MagnitudeModel{H: -1.68, Nominal: 5.0}, RadiusKm: 1821.6},
	{ID: "europa", Name: "Europa", Category: CategoryMoon, Parent: "jupiter",
		Magnitude: MagnitudeModel{H: -1.41, Nominal: 5.3}, RadiusKm: 1560.8},
	{ID: "ganymede", Name: "Ganymede", Category: CategoryMoon, Parent: "jupiter",
		Magnitude: MagnitudeModel{H: -2.09, Nominal: 4.6}, RadiusKm: 2634.1},
	{ID: "callisto", Name: "Callisto", Category: CategoryMoon, Parent: "jupiter",
		Magnitude: MagnitudeModel{H: -1.05, Nominal: 5.7}, RadiusKm: 2410.3},

	{ID: "titan", Name: "Titan", Category: CategoryMoon, Parent: "saturn",
		Magnitude: MagnitudeModel{H: -1.28, Nominal: 8.3}, RadiusKm: 2574.7},
	{ID: "enceladus", Name: "Enceladus", Category: CategoryMoon, Parent: "saturn",
		Magnitude: MagnitudeModel{H: 2.10, Nominal: 11.7}, RadiusKm: 252.1},
	{ID: "mimas", Name: "Mimas", Category: CategoryMoon, Parent: "saturn",
		Magnitude: MagnitudeModel{H: 3.3, Nominal: 12.9}, RadiusKm: 198.2},
	{ID: "dione", Name: "Dione", Category: CategoryMoon, Parent: "saturn",
		Magnitude: MagnitudeModel{H: 0.8, Nominal: 10.4}, RadiusKm: 561.4},
	{ID: "rhea", Name: "Rhea", Category: CategoryMoon, Parent: "saturn",
		Magnitude: MagnitudeModel{H: 0.1, Nominal: 9.7}, RadiusKm: 763.8},
	{ID: "iapetus", Name: "Iapetus", Category: CategoryMoon, Parent: "saturn",
		Magnitude: MagnitudeModel{H: 1.5, Nominal: 11.0}, RadiusKm: 734.5},

	{ID: "miranda", Name: "Miranda", Category: CategoryMoon, Parent: "uranus",
		Magnitude: MagnitudeModel{H: 3.6, Nominal: 16.5}, RadiusKm: 235.8},
	{ID: "ariel", Name: "Ariel", Category: CategoryMoon, Parent: "uranus",
		Magnitude: MagnitudeModel{H: 1.45, Nominal: 14.4}, RadiusKm: 578.9},
	{ID: "umbriel", Name: "Umbriel", Category: CategoryMoon, Parent: "uranus",
		Magnitude: MagnitudeModel{H: 2.10, Nominal: 15.1}, RadiusKm: 584.7},
	{ID: "titania", Name: "Titania", Category: CategoryMoon, Parent: "uranus",
		Magnitude: MagnitudeModel{H: 1.02, Nominal: 13.9}, RadiusKm: 788.9},
	{ID: "oberon", Name: "Oberon", Category: CategoryMoon, Parent: "uranus",
		Magnitude: MagnitudeModel{H: 1.23, Nominal: 14.1}, RadiusKm: 761.4},

	{ID: "triton", Name: "Triton", Category: CategoryMoon, Parent: "neptune",
		Magnitude: MagnitudeModel{H: -1.24, Nominal: 13.5}, RadiusKm: 1353.4},
	{ID: "nereid", Name: "Nereid", Category: CategoryMoon, Parent: "neptune",
		Magnitude: MagnitudeModel{H: 4.0, Nominal: 19.7}, RadiusKm: 170},
}
