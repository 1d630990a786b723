package geometry

import (
	"math"
	"testing"
)

const epsilon = 0.01 // tolerance for float comparisons (degrees)

// ---------- Optics ----------

// Reference: APS-C imager (23.6 x 15.8 mm) behind a 35mm lens
// HorizontalFOV = 2 * atan(23.6 / (2*35)) * 180/pi ~ 37.22 deg
// VerticalFOV   = 2 * atan(15.8 / (2*35)) * 180/pi ~ 25.43 deg
func TestOptics_APSC_35mm(t *testing.T) {
	o := Optics{FocalLengthMm: 35, SensorWidthMm: 23.6, SensorHeightMm: 15.8}

	if got := o.HorizontalFOV(); math.Abs(got-37.22) > epsilon {
		t.Errorf("HorizontalFOV() = %v, want ~37.22", got)
	}
	if got := o.VerticalFOV(); math.Abs(got-25.43) > epsilon {
		t.Errorf("VerticalFOV() = %v, want ~25.43", got)
	}
}

// Reference: 1/4" depth imager (3.896 x 2.453 mm) behind a 1.93mm lens,
// close to the published 87 x 58 deg depth FOV of a D435.
func TestOptics_DepthImagerWide(t *testing.T) {
	o := Optics{FocalLengthMm: 1.93, SensorWidthMm: 3.896, SensorHeightMm: 2.453}
	fov, err := o.FieldOfView()
	if err != nil {
		t.Fatalf("FieldOfView() error: %v", err)
	}
	if math.Abs(fov.HorizontalDeg-90.5) > 1 {
		t.Errorf("HorizontalDeg = %v, want ~90.5", fov.HorizontalDeg)
	}
	if math.Abs(fov.VerticalDeg-64.9) > 1 {
		t.Errorf("VerticalDeg = %v, want ~64.9", fov.VerticalDeg)
	}
	if err := fov.Validate(); err != nil {
		t.Errorf("derived FOV should validate: %v", err)
	}
}

func TestOptics_FOV_DecreasesWithFocalLength(t *testing.T) {
	wide := Optics{FocalLengthMm: 18, SensorWidthMm: 23.6, SensorHeightMm: 15.8}
	tele := Optics{FocalLengthMm: 200, SensorWidthMm: 23.6, SensorHeightMm: 15.8}

	if wide.HorizontalFOV() <= tele.HorizontalFOV() {
		t.Errorf("18mm FOV (%v) should be larger than 200mm FOV (%v)",
			wide.HorizontalFOV(), tele.HorizontalFOV())
	}
	if wide.VerticalFOV() <= tele.VerticalFOV() {
		t.Errorf("18mm vertical FOV (%v) should be larger than 200mm vertical FOV (%v)",
			wide.VerticalFOV(), tele.VerticalFOV())
	}
}

func TestOptics_Validate(t *testing.T) {
	tests := []struct {
		name    string
		optics  Optics
		wantErr bool
	}{
		{"valid", Optics{1.93, 3.896, 2.453}, false},
		{"zero_focal", Optics{0, 3.896, 2.453}, true},
		{"negative_width", Optics{1.93, -1, 2.453}, true},
		{"zero_height", Optics{1.93, 3.896, 0}, true},
		{"nan_focal", Optics{math.NaN(), 3.896, 2.453}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.optics.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, ferr := tt.optics.FieldOfView(); (ferr != nil) != tt.wantErr {
				t.Errorf("FieldOfView() error = %v, wantErr %v", ferr, tt.wantErr)
			}
		})
	}
}

// ---------- Diagonal ----------

func TestFieldOfView_DiagonalDeg(t *testing.T) {
	// 90 x 90: tan(45) = 1 on both axes, diagonal = 2 * atan(sqrt 2)
	square := FieldOfView{HorizontalDeg: 90, VerticalDeg: 90}
	want := 2 * math.Atan(math.Sqrt2) * 180 / math.Pi
	if got := square.DiagonalDeg(); math.Abs(got-want) > epsilon {
		t.Errorf("DiagonalDeg() = %v, want ~%v", got, want)
	}

	d435 := FieldOfView{HorizontalDeg: 87, VerticalDeg: 58}
	if got := d435.DiagonalDeg(); got <= 87 || got >= 180 {
		t.Errorf("DiagonalDeg() = %v, want within (87, 180)", got)
	}
}
