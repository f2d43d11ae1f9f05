package ephem

import "strings"

// TargetID is a NAIF SPICE ID for a body.
type TargetID int

// TargetInfo contains mapping information for a body.
type TargetInfo struct {
	Body   string   // catalog key, lowercase
	NAIFID TargetID // NAIF SPICE ID
	Parent string   // planet a satellite orbits, empty otherwise
}

// NAIF SPICE IDs for the supported bodies.
// Sourced from https://naif.jpl.nasa.gov/pub/naif/toolkit_docs/C/req/naif_ids.html
const (
	NAIFSun       TargetID = 10
	NAIFMercury   TargetID = 199
	NAIFVenus     TargetID = 299
	NAIFMoon      TargetID = 301
	NAIFMars      TargetID = 499
	NAIFJupiter   TargetID = 599
	NAIFSaturn    TargetID = 699
	NAIFUranus    TargetID = 799
	NAIFNeptune   TargetID = 899
	NAIFPluto     TargetID = 999
	NAIFIo        TargetID = 501
	NAIFEuropa    TargetID = 502
	NAIFGanymede  TargetID = 503
	NAIFCallisto  TargetID = 504
	NAIFMimas     TargetID = 601
	NAIFEnceladus TargetID = 602
	NAIFDione     TargetID = 604
	NAIFRhea      TargetID = 605
	NAIFTitan     TargetID = 606
	NAIFIapetus   TargetID = 608
	NAIFAriel     TargetID = 701
	NAIFUmbriel   TargetID = 702
	NAIFTitania   TargetID = 703
	NAIFOberon    TargetID = 704
	NAIFMiranda   TargetID = 705
	NAIFTriton    TargetID = 801
	NAIFNereid    TargetID = 802
)

// Targets is the list of bodies with a NAIF mapping.
var Targets = []TargetInfo{
	{Body: "sun", NAIFID: NAIFSun},
	{Body: "mercury", NAIFID: NAIFMercury},
	{Body: "venus", NAIFID: NAIFVenus},
	{Body: "moon", NAIFID: NAIFMoon},
	{Body: "mars", NAIFID: NAIFMars},
	{Body: "jupiter", NAIFID: NAIFJupiter},
	{Body: "saturn", NAIFID: NAIFSaturn},
	{Body: "uranus", NAIFID: NAIFUranus},
	{Body: "neptune", NAIFID: NAIFNeptune},
	{Body: "pluto", NAIFID: NAIFPluto},

	// Jupiter
	{Body: "io", NAIFID: NAIFIo, Parent: "jupiter"},
	{Body: "europa", NAIFID: NAIFEuropa, Parent: "jupiter"},
	{Body: "ganymede", NAIFID: NAIFGanymede, Parent: "jupiter"},
	{Body: "callisto", NAIFID: NAIFCallisto, Parent: "jupiter"},

	// Saturn
	{Body: "mimas", NAIFID: NAIFMimas, Parent: "saturn"},
	{Body: "enceladus", NAIFID: NAIFEnceladus, Parent: "saturn"},
	{Body: "dione", NAIFID: NAIFDione, Parent: "saturn"},
	{Body: "rhea", NAIFID: NAIFRhea, Parent: "saturn"},
	{Body: "titan", NAIFID: NAIFTitan, Parent: "saturn"},
	{Body: "iapetus", NAIFID: NAIFIapetus, Parent: "saturn"},

	// Uranus
	{Body: "ariel", NAIFID: NAIFAriel, Parent: "uranus"},
	{Body: "umbriel", NAIFID: NAIFUmbriel, Parent: "uranus"},
	{Body: "titania", NAIFID: NAIFTitania, Parent: "uranus"},
	{Body: "oberon", NAIFID: NAIFOberon, Parent: "uranus"},
	{Body: "miranda", NAIFID: NAIFMiranda, Parent: "uranus"},

	// Neptune
	{Body: "triton", NAIFID: NAIFTriton, Parent: "neptune"},
	{Body: "nereid", NAIFID: NAIFNereid, Parent: "neptune"},
}

// TargetsByNAIF maps NAIF IDs to target info for quick lookup.
var TargetsByNAIF = func() map[TargetID]TargetInfo {
	m := make(map[TargetID]TargetInfo, len(Targets))
	for _, t := range Targets {
		m[t.NAIFID] = t
	}
	return m
}()

// TargetsByBody maps catalog keys to target info.
var TargetsByBody = func() map[string]TargetInfo {
	m := make(map[string]TargetInfo, len(Targets))
	for _, t := range Targets {
		m[t.Body] = t
	}
	return m
}()

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetTarget returns target info for a body key (case-insensitive).
func GetTarget(body string) (TargetInfo, bool) {
	t, ok := TargetsByBody[normalizeName(body)]
	return t, ok
}

// GetTargetByNAIF returns target info for a NAIF ID.
func GetTargetByNAIF(id TargetID) (TargetInfo, bool) {
	t, ok := TargetsByNAIF[id]
	return t, ok
}

// GetNAIFID returns the NAIF ID for a body key, or 0 if unknown.
func GetNAIFID(body string) TargetID {
	if t, ok := GetTarget(body); ok {
		return t.NAIFID
	}
	return 0
}
