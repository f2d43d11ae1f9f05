package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Order(t *testing.T) {
	want := []string{
		"sun", "mercury", "venus", "mars", "jupiter", "saturn", "uranus", "neptune",
		"moon", "pluto",
		"io", "europa", "ganymede", "callisto",
		"titan", "enceladus", "mimas", "dione", "rhea", "iapetus",
		"miranda", "ariel", "umbriel", "titania", "oberon",
		"triton", "nereid",
	}
	assert.Equal(t, want, Default().IDs())
	assert.Equal(t, len(want), Default().Len())
}

func TestDefault_Categories(t *testing.T) {
	c := Default()

	tests := []struct {
		id       string
		category Category
		parent   string
	}{
		{"sun", CategoryStar, ""},
		{"venus", CategoryPlanet, ""},
		{"pluto", CategoryDwarfPlanet, ""},
		{"moon", CategoryMoon, ""},
		{"titan", CategoryMoon, "saturn"},
		{"triton", CategoryMoon, "neptune"},
	}
	for _, tc := range tests {
		d, err := c.Lookup(tc.id)
		require.NoError(t, err, tc.id)
		assert.Equal(t, tc.category, d.Category, tc.id)
		assert.Equal(t, tc.parent, d.Parent, tc.id)
	}

	for _, d := range c.All() {
		if d.Category == CategoryMoon && d.ID != MoonID {
			assert.NotEmpty(t, d.Parent, "%s should name its planet", d.ID)
		}
		assert.Positive(t, d.RadiusKm, d.ID)
		assert.NotEmpty(t, d.Name, d.ID)
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	d, err := c.Lookup("Jupiter")
	require.NoError(t, err)
	assert.Equal(t, "jupiter", d.ID)
	assert.Equal(t, "Jupiter", d.Name)

	_, err = c.Lookup("vulcan")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBody))

	var ube *UnknownBodyError
	require.True(t, errors.As(err, &ube))
	assert.Equal(t, "vulcan", ube.ID)
}

func TestIndex(t *testing.T) {
	c := Default()
	assert.Equal(t, 0, c.Index("sun"))
	assert.Equal(t, 8, c.Index("MOON"))
	assert.Equal(t, -1, c.Index("vulcan"))
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Name = "Not the Sun"

	d, err := c.Lookup("sun")
	require.NoError(t, err)
	assert.Equal(t, "Sun", d.Name)
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]Descriptor{{ID: "a"}, {ID: "A"}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = New([]Descriptor{{ID: " "}})
	assert.ErrorContains(t, err, "empty")

	_, err = New([]Descriptor{{ID: "phobos", Parent: "mars"}})
	assert.ErrorContains(t, err, "unregistered parent")

	c, err := New([]Descriptor{{ID: "Mars"}, {ID: "phobos", Parent: "MARS"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"mars", "phobos"}, c.IDs())
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "star", CategoryStar.String())
	assert.Equal(t, "planet", CategoryPlanet.String())
	assert.Equal(t, "dwarf_planet", CategoryDwarfPlanet.String())
	assert.Equal(t, "moon", CategoryMoon.String())
	assert.Equal(t, "unknown", Category(42).String())

	b, err := CategoryDwarfPlanet.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "dwarf_planet", string(b))
}

func TestMagnitudeModel(t *testing.T) {
	c := Default()
	lookup := func(id string) Descriptor {
		d, err := c.Lookup(id)
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		id          string
		r, delta, i float64
		want, tol   float64
	}{
		// Jupiter at the December 2024 opposition
		{"jupiter", 5.07, 4.087, 0.5, -2.82, 0.05},
		// full Moon at mean distance
		{"moon", 1.0, 0.00257, 1.6, -12.70, 0.1},
		// Venus near greatest brilliancy
		{"venus", 0.72, 0.40, 120, -4.67, 0.05},
		// Sun from 1 AU
		{"sun", 0, 1.0, 0, -26.74, 1e-9},
	}
	for _, tc := range tests {
		d := lookup(tc.id)
		got := d.Magnitude.Magnitude(d.Category, tc.r, tc.delta, tc.i)
		assert.InDelta(t, tc.want, got, tc.tol, tc.id)
	}

	mars := lookup("mars")
	assert.Equal(t, 1.2, mars.Magnitude.Magnitude(mars.Category, 0, 0, 0), "nominal fallback")
}

func TestCategoryText(t *testing.T) {
	var c Category
	require.NoError(t, c.UnmarshalText([]byte("dwarf_planet")))
	assert.Equal(t, CategoryDwarfPlanet, c)
	assert.Error(t, c.UnmarshalText([]byte("comet")))
}
