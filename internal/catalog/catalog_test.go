package catalog

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
sensors:
  - id: cam-a
    name: Camera A
    sensor_type: tof
    depth_range_m: {min: 0.3, max: 10, recommended_max: 4}
    depth_fov_deg: {horizontal: 87, vertical: 58}
    depth_resolutions:
      - {label: 848x480, width: 848, height: 480, fps: [30]}
      - {width: 640, height: 480, fps: [30, 60]}
  - id: cam-b
    depth_range_m: {min: 1, max: 20}
    optics: {focal_length_mm: 4, sensor_width_mm: 5.37, sensor_height_mm: 3.02}
scenes:
  - id: lane
    environment: indoor
    dimensions_m: {width: 4, depth: 6, height: 3}
    origin: {reference: wall}
    default_camera_pose:
      position_m: {x: 0, y: 2.4, z: -5}
  - id: cube
    dimensions_m: {width: 1, depth: 1, height: 1}
`

func mustParse(t *testing.T, data string) *Catalog {
	t.Helper()
	c, err := Parse([]byte(data))
	require.NoError(t, err)
	return c
}

// ---------- Load ----------

func TestLoad_RepositoryCatalog(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "configs", "catalog.yaml"))
	require.NoError(t, err)

	assert.NotEmpty(t, c.Sensors)
	assert.NotEmpty(t, c.Scenes)
	for i := range c.Sensors {
		_, err := c.Sensors[i].FieldOfView()
		assert.NoErrorf(t, err, "sensor %s", c.Sensors[i].ID)
	}

	d435, err := c.Sensor("realsense-d435")
	require.NoError(t, err)
	fov, err := d435.FieldOfView()
	require.NoError(t, err)
	assert.Equal(t, 87.0, fov.HorizontalDeg)
	assert.Equal(t, 58.0, fov.VerticalDeg)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{"sensors":[{"id":"j","depth_range_m":{"min":0.2,"max":5},"depth_fov_deg":{"horizontal":70,"vertical":50}}],
"scenes":[{"id":"s","dimensions_m":{"width":2,"depth":2,"height":2}}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"j"}, c.SensorIDs())
	assert.Equal(t, []string{"s"}, c.SceneIDs())
}

func TestLoad_JSONCamelCaseKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{"sensors":[{"id":"d435","sensorType":"stereo_rgb_depth",
"depthRange_m":{"min":0.3,"max":10,"recommendedMax":3},
"depthFov_deg":{"horizontal":87,"vertical":58,"diagonal":94},
"depthResolutions":[{"width":848,"height":480,"fps":[30,60]}],
"illumination":{"wavelength_nm":850},
"power_W":3.5,"operatingTemperature_C":{"min":0,"max":35},"sdkSupport":["librealsense"]}],
"scenes":[{"id":"lane","dimensions_m":{"width":4,"depth":6,"height":3},
"defaultCameraPose":{"position_m":{"x":0,"y":2.2,"z":-5}}}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	s := c.DefaultSensor()
	assert.Equal(t, "stereo_rgb_depth", s.Type)
	assert.Equal(t, DepthRange{Min: 0.3, Max: 10, RecommendedMax: 3}, s.DepthRange)
	fov, err := s.FieldOfView()
	require.NoError(t, err)
	assert.Equal(t, 87.0, fov.HorizontalDeg)
	res, err := s.Resolution("")
	require.NoError(t, err)
	assert.Equal(t, "848x480", res.Name())
	assert.Equal(t, "850", s.Illumination["wavelength_nm"])
	assert.Equal(t, 3.5, s.PowerW)
	require.NotNil(t, s.OperatingTempC)
	assert.Equal(t, 35.0, s.OperatingTempC.Max)
	assert.Equal(t, []string{"librealsense"}, s.SDKSupport)

	h, ok := c.DefaultScene().DefaultHeight()
	assert.True(t, ok)
	assert.Equal(t, 2.2, h)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// ---------- Validation ----------

func TestParse_Invalid(t *testing.T) {
	scene := "\nscenes:\n  - id: s\n    dimensions_m: {width: 1, depth: 1, height: 1}\n"
	sensor := "sensors:\n  - id: a\n    depth_range_m: {min: 0.3, max: 10}\n    depth_fov_deg: {horizontal: 87, vertical: 58}\n"
	tests := []struct {
		name string
		yaml string
	}{
		{"no_sensors", "sensors: []" + scene},
		{"no_scenes", sensor},
		{"missing_id", "sensors:\n  - depth_range_m: {min: 0.3, max: 10}\n    depth_fov_deg: {horizontal: 87, vertical: 58}\n" + scene},
		{"duplicate_sensor", sensor + "  - id: a\n    depth_range_m: {min: 0.3, max: 10}\n    depth_fov_deg: {horizontal: 87, vertical: 58}\n" + scene},
		{"no_fov", "sensors:\n  - id: a\n    depth_range_m: {min: 0.3, max: 10}\n" + scene},
		{"fov_180", "sensors:\n  - id: a\n    depth_range_m: {min: 0.3, max: 10}\n    depth_fov_deg: {horizontal: 180, vertical: 58}\n" + scene},
		{"bad_optics", "sensors:\n  - id: a\n    depth_range_m: {min: 0.3, max: 10}\n    optics: {focal_length_mm: 0, sensor_width_mm: 5, sensor_height_mm: 3}\n" + scene},
		{"range_reversed", "sensors:\n  - id: a\n    depth_range_m: {min: 5, max: 1}\n    depth_fov_deg: {horizontal: 87, vertical: 58}\n" + scene},
		{"recommended_beyond_max", "sensors:\n  - id: a\n    depth_range_m: {min: 0.3, max: 10, recommended_max: 12}\n    depth_fov_deg: {horizontal: 87, vertical: 58}\n" + scene},
		{"zero_resolution", "sensors:\n  - id: a\n    depth_range_m: {min: 0.3, max: 10}\n    depth_fov_deg: {horizontal: 87, vertical: 58}\n    depth_resolutions: [{width: 0, height: 480}]\n" + scene},
		{"flat_scene", sensor + "scenes:\n  - id: s\n    dimensions_m: {width: 1, depth: 1, height: 0}\n"},
		{"duplicate_scene", sensor + "scenes:\n  - id: s\n    dimensions_m: {width: 1, depth: 1, height: 1}\n  - id: s\n    dimensions_m: {width: 1, depth: 1, height: 1}\n"},
		{"not_yaml", "{{{{"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

// ---------- Lookups ----------

func TestLookups(t *testing.T) {
	c := mustParse(t, minimalYAML)

	s, err := c.Sensor("cam-b")
	require.NoError(t, err)
	assert.Equal(t, "cam-b", s.ID)

	_, err = c.Sensor("cam-z")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "cam-z")

	sc, err := c.Scene("cube")
	require.NoError(t, err)
	assert.Equal(t, 1.0, sc.Box().Width)

	_, err = c.Scene("pool")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, "cam-a", c.DefaultSensor().ID)
	assert.Equal(t, "lane", c.DefaultScene().ID)
}

func TestSensor_FieldOfViewFromOptics(t *testing.T) {
	c := mustParse(t, minimalYAML)
	s, err := c.Sensor("cam-b")
	require.NoError(t, err)

	fov, err := s.FieldOfView()
	require.NoError(t, err)
	want := 2 * math.Atan(5.37/8) * 180 / math.Pi
	assert.InDelta(t, want, fov.HorizontalDeg, 1e-9)
}

func TestSensor_DegreesWinOverOptics(t *testing.T) {
	c := mustParse(t, `
sensors:
  - id: both
    depth_range_m: {min: 0.3, max: 10}
    depth_fov_deg: {horizontal: 60, vertical: 40}
    optics: {focal_length_mm: 4, sensor_width_mm: 5.37, sensor_height_mm: 3.02}
scenes:
  - id: s
    dimensions_m: {width: 1, depth: 1, height: 1}
`)
	fov, err := c.DefaultSensor().FieldOfView()
	require.NoError(t, err)
	assert.Equal(t, 60.0, fov.HorizontalDeg)
	assert.Equal(t, 40.0, fov.VerticalDeg)
}

func TestSensor_Resolution(t *testing.T) {
	c := mustParse(t, minimalYAML)
	s := c.DefaultSensor()

	tests := []struct {
		label   string
		wantW   int
		wantErr bool
	}{
		{"", 848, false},
		{"848x480", 848, false},
		{"640X480", 640, false}, // unlabeled, matched on WIDTHxHEIGHT
		{"1920x1080", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			r, err := s.Resolution(tt.label)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, r.Width)
		})
	}

	bare, err := c.Sensor("cam-b")
	require.NoError(t, err)
	_, err = bare.Resolution("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScene_DefaultHeight(t *testing.T) {
	c := mustParse(t, minimalYAML)

	h, ok := c.Scenes[0].DefaultHeight()
	assert.True(t, ok)
	assert.Equal(t, 2.4, h)

	_, ok = c.Scenes[1].DefaultHeight()
	assert.False(t, ok)
}
