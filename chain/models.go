package chain

import (
	_ "embed"
)

//go:embed ur5e.json
var ur5eJSON []byte

// UR5e returns the builtin description of a Universal Robots UR5e arm,
// toolplate frame at the tip, with inertial data for all six links.
func UR5e() (*Chain, error) {
	cfg, err := UnmarshalConfig(ur5eJSON)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}
