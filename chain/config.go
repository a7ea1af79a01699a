package chain

import (
	"os"

	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// TranslationConfig specifies an offset in meters.
type TranslationConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// OrientationConfig specifies fixed roll/pitch/yaw angles in radians,
// composed as Rz(yaw) * Ry(pitch) * Rx(roll).
type OrientationConfig struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// AxisConfig specifies a joint axis direction in the frame the joint sits
// in. It does not need to be unit length.
type AxisConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// InertialConfig specifies the mass properties of a link. Center is the
// center of mass relative to the link's distal frame, moments are the
// diagonal (ixx, iyy, izz) of the rotational inertia about the center of
// mass, and products are the optional off-diagonal terms (ixy, ixz, iyz).
type InertialConfig struct {
	Mass     float64           `json:"mass"`
	Center   TranslationConfig `json:"center"`
	Moments  []float64         `json:"moments"`
	Products []float64         `json:"products,omitempty"`
}

// LinkConfig describes one rigid link. The base link has parent "world",
// every other link is parented to the joint that moves it.
type LinkConfig struct {
	ID          string             `json:"id"`
	Parent      string             `json:"parent"`
	Translation TranslationConfig  `json:"translation"`
	Orientation *OrientationConfig `json:"orientation,omitempty"`
	Inertial    *InertialConfig    `json:"inertial,omitempty"`
}

// JointConfig describes one joint, parented to the link it is mounted on.
// A joint with min == max == 0 is treated as unlimited.
type JointConfig struct {
	ID     string     `json:"id"`
	Parent string     `json:"parent"`
	Type   string     `json:"type"`
	Axis   AxisConfig `json:"axis"`
	Min    float64    `json:"min"`
	Max    float64    `json:"max"`
}

// Config is the parsed form of a chain description file.
type Config struct {
	Name   string        `json:"name"`
	Links  []LinkConfig  `json:"links"`
	Joints []JointConfig `json:"joints"`
}

// UnmarshalConfig parses a chain description. The data may use JSON5
// conveniences such as comments and trailing commas.
func UnmarshalConfig(jsonData []byte) (*Config, error) {
	cfg := &Config{}
	if err := json5.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse chain config")
	}
	return cfg, nil
}

// ParseConfigFile reads a chain description from a file and builds the
// chain it describes.
func ParseConfigFile(filename string) (*Chain, error) {
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chain config file")
	}
	cfg, err := UnmarshalConfig(jsonData)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}
