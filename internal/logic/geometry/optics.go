package geometry

import (
	"fmt"
	"math"
)

// Optics describes a sensor by its lens and imager size, for catalog
// entries that do not publish FOV angles directly.
type Optics struct {
	FocalLengthMm  float64 `yaml:"focal_length_mm" json:"focal_length_mm"`
	SensorWidthMm  float64 `yaml:"sensor_width_mm" json:"sensor_width_mm"`
	SensorHeightMm float64 `yaml:"sensor_height_mm" json:"sensor_height_mm"`
}

// Validate returns an error if any optical dimension is missing.
func (o Optics) Validate() error {
	if !isFinite(o.FocalLengthMm) || o.FocalLengthMm <= 0 {
		return fmt.Errorf("focal_length_mm must be > 0, got %g", o.FocalLengthMm)
	}
	if !isFinite(o.SensorWidthMm) || o.SensorWidthMm <= 0 {
		return fmt.Errorf("sensor_width_mm must be > 0, got %g", o.SensorWidthMm)
	}
	if !isFinite(o.SensorHeightMm) || o.SensorHeightMm <= 0 {
		return fmt.Errorf("sensor_height_mm must be > 0, got %g", o.SensorHeightMm)
	}
	return nil
}

// HorizontalFOV calculates the horizontal field of view in degrees.
// Formula: FOV = 2 × arctan(sensor_width / (2 × focal_length))
func (o Optics) HorizontalFOV() float64 {
	return 2.0 * math.Atan(o.SensorWidthMm/(2.0*o.FocalLengthMm)) * 180.0 / math.Pi
}

// VerticalFOV calculates the vertical field of view in degrees.
// Formula: FOV = 2 × arctan(sensor_height / (2 × focal_length))
func (o Optics) VerticalFOV() float64 {
	return 2.0 * math.Atan(o.SensorHeightMm/(2.0*o.FocalLengthMm)) * 180.0 / math.Pi
}

// FieldOfView returns the derived aperture pair.
func (o Optics) FieldOfView() (FieldOfView, error) {
	if err := o.Validate(); err != nil {
		return FieldOfView{}, err
	}
	return FieldOfView{HorizontalDeg: o.HorizontalFOV(), VerticalDeg: o.VerticalFOV()}, nil
}

// DiagonalDeg returns the diagonal aperture of a rectilinear sensor.
// Formula: FOV = 2 × arctan(√(tan²(h/2) + tan²(v/2)))
func (f FieldOfView) DiagonalDeg() float64 {
	th := math.Tan(f.horizontalRad() / 2)
	tv := math.Tan(f.verticalRad() / 2)
	return radToDeg(2 * math.Atan(math.Hypot(th, tv)))
}
