package astro

import (
	"math"
	"testing"
)

func TestPhaseAngle(t *testing.T) {
	sun := Vec3{X: AU}

	tests := []struct {
		name string
		body Vec3
		want float64
	}{
		{"full moon", Vec3{X: -384400}, 0},
		{"new moon", Vec3{X: 384400}, 180},
		{"conjunction far side", Vec3{X: 5 * AU}, 0},
		{"quadrature", Vec3{Y: 384400}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PhaseAngle(sun, tt.body)
			// Moon-distance bodies see the Sun ~0.15° off the ideal direction
			if math.Abs(got-tt.want) > 0.2 {
				t.Errorf("PhaseAngle() = %.3f°, want %.1f°", got, tt.want)
			}
		})
	}
}

func TestIlluminatedFraction(t *testing.T) {
	tests := []struct {
		angle float64
		want  float64
	}{
		{0, 1},
		{90, 0.5},
		{180, 0},
		{60, 0.75},
	}
	for _, tt := range tests {
		if got := IlluminatedFraction(tt.angle); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("IlluminatedFraction(%v) = %v, want %v", tt.angle, got, tt.want)
		}
	}
}

func TestPhaseName(t *testing.T) {
	tests := []struct {
		elong float64
		want  string
	}{
		{0, "New Moon"},
		{22.4, "New Moon"},
		{22.6, "Waxing Crescent"},
		{90, "First Quarter"},
		{135, "Waxing Gibbous"},
		{180, "Full Moon"},
		{225, "Waning Gibbous"},
		{270, "Last Quarter"},
		{315, "Waning Crescent"},
		{350, "New Moon"},
		{-90, "Last Quarter"},
	}
	for _, tt := range tests {
		if got := PhaseName(tt.elong); got != tt.want {
			t.Errorf("PhaseName(%v) = %q, want %q", tt.elong, got, tt.want)
		}
	}
}

func TestAngularDiameter(t *testing.T) {
	// Moon at mean distance is about 31' across
	got := AngularDiameter(1737.4, 384400)
	if math.Abs(got-1864.6) > 1 {
		t.Errorf("AngularDiameter(Moon) = %.1f\", want ~1864.6\"", got)
	}
	if got := AngularDiameter(10, 5); got != 0 {
		t.Errorf("AngularDiameter inside body = %v, want 0", got)
	}
}
