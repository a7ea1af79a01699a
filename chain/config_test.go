package chain

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

const planarArmJSON = `{
	// Two revolute joints in the xy plane.
	"name": "planar2",
	"links": [
		{"id": "base", "parent": "world"},
		{"id": "upper", "parent": "j1", "translation": {"x": 1}},
		{"id": "lower", "parent": "j2", "translation": {"x": 1}},
	],
	"joints": [
		{"id": "j1", "parent": "base", "type": "revolute", "axis": {"z": 1}},
		{"id": "j2", "parent": "upper", "type": "revolute", "axis": {"z": 1}, "min": -1.5, "max": 1.5},
	],
}`

func TestUnmarshalConfig(t *testing.T) {
	cfg, err := UnmarshalConfig([]byte(planarArmJSON))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Name, test.ShouldEqual, "planar2")
	test.That(t, cfg.Links, test.ShouldHaveLength, 3)
	test.That(t, cfg.Joints, test.ShouldHaveLength, 2)
	test.That(t, cfg.Joints[1].Min, test.ShouldEqual, -1.5)

	model, err := New(cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.DOF(), test.ShouldEqual, 2)
	test.That(t, model.Home().At(0, 3), test.ShouldAlmostEqual, 2, 1e-12)

	_, err = UnmarshalConfig([]byte(`{"name": `))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to parse chain config")
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planar2.json")
	test.That(t, os.WriteFile(path, []byte(planarArmJSON), 0o600), test.ShouldBeNil)

	model, err := ParseConfigFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Name(), test.ShouldEqual, "planar2")
	test.That(t, model.JointNames(), test.ShouldResemble, []string{"j1", "j2"})

	_, err = ParseConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to read chain config file")
}
