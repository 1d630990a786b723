// Package catalog loads the depth-sensor and scene definitions the planner
// chooses from.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cjeanneret/DepthMount/internal/logic/geometry"
)

// MaxCatalogFileBytes caps the catalog file size (4 MiB).
const MaxCatalogFileBytes = 4 << 20

// ErrNotFound is returned (wrapped with the id) by lookups.
var ErrNotFound = errors.New("not found")

// DepthRange is the sensor's usable measuring range in meters.
type DepthRange struct {
	Min            float64 `yaml:"min" json:"min"`
	Max            float64 `yaml:"max" json:"max"`
	RecommendedMax float64 `yaml:"recommended_max,omitempty" json:"recommended_max,omitempty"` // 0 = not published
}

// FOV is a published aperture in degrees.
type FOV struct {
	Horizontal float64 `yaml:"horizontal" json:"horizontal"`
	Vertical   float64 `yaml:"vertical" json:"vertical"`
	Diagonal   float64 `yaml:"diagonal,omitempty" json:"diagonal,omitempty"`
}

// Resolution is one output mode of a stream.
type Resolution struct {
	Label  string `yaml:"label,omitempty" json:"label,omitempty"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	FPS    []int  `yaml:"fps" json:"fps"`
}

// Name returns the label, or WIDTHxHEIGHT when none is set.
func (r Resolution) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return strconv.Itoa(r.Width) + "x" + strconv.Itoa(r.Height)
}

// TemperatureRange is the operating temperature in °C.
type TemperatureRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Sensor is one depth camera model.
type Sensor struct {
	ID                  string            `yaml:"id" json:"id"`
	Name                string            `yaml:"name" json:"name"`
	Vendor              string            `yaml:"vendor" json:"vendor"`
	Type                string            `yaml:"sensor_type" json:"sensor_type"` // "stereo_rgb_depth", "tof", ...
	BaselineMm          float64           `yaml:"baseline_mm,omitempty" json:"baseline_mm,omitempty"`
	DepthRange          DepthRange        `yaml:"depth_range_m" json:"depth_range_m"`
	DepthFOV            *FOV              `yaml:"depth_fov_deg,omitempty" json:"depth_fov_deg,omitempty"`
	RGBFOV              *FOV              `yaml:"rgb_fov_deg,omitempty" json:"rgb_fov_deg,omitempty"`
	Optics              *geometry.Optics  `yaml:"optics,omitempty" json:"optics,omitempty"` // used when depth_fov_deg is absent
	DepthResolutions    []Resolution      `yaml:"depth_resolutions" json:"depth_resolutions"`
	RGBResolutions      []Resolution      `yaml:"rgb_resolutions,omitempty" json:"rgb_resolutions,omitempty"`
	IMU                 map[string]bool   `yaml:"imu,omitempty" json:"imu,omitempty"`
	Illumination        map[string]string `yaml:"illumination,omitempty" json:"illumination,omitempty"`
	Interfaces          []string          `yaml:"interfaces" json:"interfaces"`
	PowerW              float64           `yaml:"power_w,omitempty" json:"power_w,omitempty"`
	OperatingTempC      *TemperatureRange `yaml:"operating_temperature_c,omitempty" json:"operating_temperature_c,omitempty"`
	EnvironmentalRating string            `yaml:"environmental_rating,omitempty" json:"environmental_rating,omitempty"`
	SDKSupport          []string          `yaml:"sdk_support,omitempty" json:"sdk_support,omitempty"`
	Notes               []string          `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// FieldOfView returns the depth aperture. Published degrees win over
// optics-derived values.
func (s *Sensor) FieldOfView() (geometry.FieldOfView, error) {
	if s.DepthFOV != nil {
		fov := geometry.FieldOfView{HorizontalDeg: s.DepthFOV.Horizontal, VerticalDeg: s.DepthFOV.Vertical}
		if err := fov.Validate(); err != nil {
			return geometry.FieldOfView{}, fmt.Errorf("sensor %s: %w", s.ID, err)
		}
		return fov, nil
	}
	if s.Optics != nil {
		fov, err := s.Optics.FieldOfView()
		if err != nil {
			return geometry.FieldOfView{}, fmt.Errorf("sensor %s optics: %w", s.ID, err)
		}
		return fov, nil
	}
	return geometry.FieldOfView{}, fmt.Errorf("sensor %s: no depth_fov_deg or optics", s.ID)
}

// Resolution finds a depth resolution by label (or WIDTHxHEIGHT). An empty
// label returns the first one.
func (s *Sensor) Resolution(label string) (Resolution, error) {
	if len(s.DepthResolutions) == 0 {
		return Resolution{}, fmt.Errorf("sensor %s has no depth resolutions: %w", s.ID, ErrNotFound)
	}
	if label == "" {
		return s.DepthResolutions[0], nil
	}
	for _, r := range s.DepthResolutions {
		if strings.EqualFold(r.Name(), label) {
			return r, nil
		}
	}
	return Resolution{}, fmt.Errorf("resolution %q for sensor %s: %w", label, s.ID, ErrNotFound)
}

// Dimensions is the measurement volume in meters.
type Dimensions struct {
	Width  float64 `yaml:"width" json:"width"`
	Depth  float64 `yaml:"depth" json:"depth"`
	Height float64 `yaml:"height" json:"height"`
}

// Origin documents which physical point the scene's coordinates refer to.
type Origin struct {
	Reference string `yaml:"reference" json:"reference"`
	Notes     string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Position is a point in scene coordinates (meters).
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Rotation is an orientation in degrees.
type Rotation struct {
	Yaw   float64 `yaml:"yaw,omitempty" json:"yaw,omitempty"`
	Pitch float64 `yaml:"pitch,omitempty" json:"pitch,omitempty"`
	Roll  float64 `yaml:"roll,omitempty" json:"roll,omitempty"`
}

// Pose is the suggested starting camera placement.
type Pose struct {
	Position Position  `yaml:"position_m" json:"position_m"`
	Rotation *Rotation `yaml:"rotation_deg,omitempty" json:"rotation_deg,omitempty"`
	Notes    string    `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Scene is a target measurement volume.
type Scene struct {
	ID                string            `yaml:"id" json:"id"`
	Name              string            `yaml:"name" json:"name"`
	Description       string            `yaml:"description,omitempty" json:"description,omitempty"`
	Environment       string            `yaml:"environment" json:"environment"` // "indoor", "outdoor", ...
	Dimensions        Dimensions        `yaml:"dimensions_m" json:"dimensions_m"`
	Origin            Origin            `yaml:"origin" json:"origin"`
	DefaultCameraPose *Pose             `yaml:"default_camera_pose,omitempty" json:"default_camera_pose,omitempty"`
	Constraints       map[string]string `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Annotations       []string          `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// Box returns the engine's view of the scene volume.
func (s *Scene) Box() geometry.Box {
	return geometry.Box{Width: s.Dimensions.Width, Depth: s.Dimensions.Depth, Height: s.Dimensions.Height}
}

// DefaultHeight returns the default pose height, if the scene defines one.
func (s *Scene) DefaultHeight() (float64, bool) {
	if s.DefaultCameraPose == nil || s.DefaultCameraPose.Position.Y <= 0 {
		return 0, false
	}
	return s.DefaultCameraPose.Position.Y, true
}

// Catalog is the full set of selectable sensors and scenes, in file order.
type Catalog struct {
	Sensors []Sensor `yaml:"sensors" json:"sensors"`
	Scenes  []Scene  `yaml:"scenes" json:"scenes"`
}

// camelKeys maps the camelCase keys used by JSON sensor and scene datasets
// to this package's keys.
var camelKeys = map[string]string{
	"sensorType":             "sensor_type",
	"depthRange_m":           "depth_range_m",
	"recommendedMax":         "recommended_max",
	"depthFov_deg":           "depth_fov_deg",
	"rgbFov_deg":             "rgb_fov_deg",
	"depthResolutions":       "depth_resolutions",
	"rgbResolutions":         "rgb_resolutions",
	"power_W":                "power_w",
	"operatingTemperature_C": "operating_temperature_c",
	"environmentalRating":    "environmental_rating",
	"sdkSupport":             "sdk_support",
	"defaultCameraPose":      "default_camera_pose",
}

// Load reads a catalog file. JSON files are accepted as YAML, with either
// snake_case or camelCase keys (depthFov_deg, sensorType, power_W...).
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if info.Size() > MaxCatalogFileBytes {
		return nil, fmt.Errorf("catalog %s exceeds %d bytes", path, MaxCatalogFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog data.
func Parse(data []byte) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	var c Catalog
	if root.Kind != 0 {
		renameKeys(&root)
		if err := root.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// renameKeys rewrites camelCase mapping keys in place.
func renameKeys(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k, ok := camelKeys[n.Content[i].Value]; ok {
				n.Content[i].Value = k
			}
		}
	}
	for _, c := range n.Content {
		renameKeys(c)
	}
}

// Validate checks ids, apertures, ranges and dimensions.
func (c *Catalog) Validate() error {
	if len(c.Sensors) == 0 {
		return errors.New("catalog has no sensors")
	}
	if len(c.Scenes) == 0 {
		return errors.New("catalog has no scenes")
	}

	seen := make(map[string]bool, len(c.Sensors))
	for i := range c.Sensors {
		s := &c.Sensors[i]
		if s.ID == "" {
			return fmt.Errorf("sensors[%d]: id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("sensors[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
		if _, err := s.FieldOfView(); err != nil {
			return err
		}
		if !positive(s.DepthRange.Max) || s.DepthRange.Min < 0 || s.DepthRange.Min >= s.DepthRange.Max {
			return fmt.Errorf("sensor %s: depth_range_m must satisfy 0 <= min < max, got %g..%g", s.ID, s.DepthRange.Min, s.DepthRange.Max)
		}
		if s.DepthRange.RecommendedMax < 0 || s.DepthRange.RecommendedMax > s.DepthRange.Max {
			return fmt.Errorf("sensor %s: recommended_max %g outside 0..max", s.ID, s.DepthRange.RecommendedMax)
		}
		for _, r := range s.DepthResolutions {
			if r.Width <= 0 || r.Height <= 0 {
				return fmt.Errorf("sensor %s: resolution %s must have positive size", s.ID, r.Name())
			}
		}
	}

	seen = make(map[string]bool, len(c.Scenes))
	for i := range c.Scenes {
		s := &c.Scenes[i]
		if s.ID == "" {
			return fmt.Errorf("scenes[%d]: id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("scenes[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
		if err := s.Box().Validate(); err != nil {
			return fmt.Errorf("scene %s: %w", s.ID, err)
		}
	}
	return nil
}

// Sensor looks a sensor up by id.
func (c *Catalog) Sensor(id string) (*Sensor, error) {
	for i := range c.Sensors {
		if c.Sensors[i].ID == id {
			return &c.Sensors[i], nil
		}
	}
	return nil, fmt.Errorf("sensor %q: %w", id, ErrNotFound)
}

// Scene looks a scene up by id.
func (c *Catalog) Scene(id string) (*Scene, error) {
	for i := range c.Scenes {
		if c.Scenes[i].ID == id {
			return &c.Scenes[i], nil
		}
	}
	return nil, fmt.Errorf("scene %q: %w", id, ErrNotFound)
}

// DefaultSensor is the first sensor in the file.
func (c *Catalog) DefaultSensor() *Sensor { return &c.Sensors[0] }

// DefaultScene is the first scene in the file.
func (c *Catalog) DefaultScene() *Scene { return &c.Scenes[0] }

// SensorIDs lists sensor ids in file order.
func (c *Catalog) SensorIDs() []string {
	ids := make([]string, len(c.Sensors))
	for i, s := range c.Sensors {
		ids[i] = s.ID
	}
	return ids
}

// SceneIDs lists scene ids in file order.
func (c *Catalog) SceneIDs() []string {
	ids := make([]string, len(c.Scenes))
	for i, s := range c.Scenes {
		ids[i] = s.ID
	}
	return ids
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) }
