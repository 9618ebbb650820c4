package scenes

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

// SceneSpec describes a world: its colliders in creation order and which of
// them the host steers.
type SceneSpec struct {
	Name     string       `yaml:"name"`
	Player   string       `yaml:"player,omitempty"`
	Speed    float64      `yaml:"speed,omitempty"`
	Entities []EntitySpec `yaml:"entities"`
}

type EntitySpec struct {
	Name     string     `yaml:"name"`
	Position Vec        `yaml:"position"`
	Shape    ShapeSpec  `yaml:"shape"`
	Trigger  bool       `yaml:"trigger,omitempty"`
	Script   string     `yaml:"script,omitempty"`
	Color    *YAMLColor `yaml:"color,omitempty"`
}

// ShapeSpec holds exactly one of its fields.
type ShapeSpec struct {
	Vertices []Vec     `yaml:"vertices,omitempty"`
	Box      *BoxSpec  `yaml:"box,omitempty"`
	Line     *LineSpec `yaml:"line,omitempty"`
}

type BoxSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type LineSpec struct {
	Start     Vec     `yaml:"start"`
	End       Vec     `yaml:"end"`
	Thickness float64 `yaml:"thickness"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("scenes: load %s: %w", filename, err)
	}

	var spec T
	if err := decodeStrict(data, &spec); err != nil {
		return zero, fmt.Errorf("scenes: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadScene loads and validates a scene by name.
func LoadScene(name string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](name)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("scenes: %s: %w", name, err)
	}
	return &spec, nil
}

// Parse decodes and validates a scene document.
func Parse(data []byte) (*SceneSpec, error) {
	var spec SceneSpec
	if err := decodeStrict(data, &spec); err != nil {
		return nil, fmt.Errorf("scenes: unmarshal: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Marshal encodes the scene back to YAML.
func (s *SceneSpec) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("scenes: marshal %s: %w", s.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("scenes: marshal %s: %w", s.Name, err)
	}
	return buf.Bytes(), nil
}

// Validate checks names, the player reference and that every collider can
// be built.
func (s *SceneSpec) Validate() error {
	if s == nil {
		return errors.New("nil scene")
	}
	if !isFinite(s.Speed) {
		return fmt.Errorf("speed %v is not a finite number", s.Speed)
	}
	if s.Speed < 0 {
		return fmt.Errorf("speed %v must not be negative", s.Speed)
	}

	seen := make(map[string]bool, len(s.Entities))
	for i, e := range s.Entities {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("entity %d has no name", i)
		}
		if seen[e.Name] {
			return fmt.Errorf("entity %q defined twice", e.Name)
		}
		seen[e.Name] = true

		if !e.Position.Finite() {
			return fmt.Errorf("entity %q: position %v is not finite", e.Name, e.Position)
		}

		if _, err := e.Collider(); err != nil {
			return fmt.Errorf("entity %q: %w", e.Name, err)
		}
	}

	if s.Player != "" {
		p, ok := s.Entity(s.Player)
		if !ok {
			return fmt.Errorf("player %q is not an entity", s.Player)
		}
		if p.Trigger {
			return fmt.Errorf("player %q must not be a trigger", s.Player)
		}
	}
	return nil
}

// Entity finds an entity by name.
func (s *SceneSpec) Entity(name string) (EntitySpec, bool) {
	if s == nil {
		return EntitySpec{}, false
	}
	for _, e := range s.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return EntitySpec{}, false
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}

// Vec decodes from either [x, y] or {x: .., y: ..}.
type Vec struct {
	X float64
	Y float64
}

// Finite reports whether both components are neither NaN nor infinite.
func (v Vec) Finite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (v Vec) Vector() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func VecOf(c cp.Vector) Vec {
	return Vec{X: c.X, Y: c.Y}
}

func (v *Vec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xy []float64
		if err := value.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: vector needs 2 components, got %d", value.Line, len(xy))
		}
		v.X, v.Y = xy[0], xy[1]
		return nil
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		v.X, v.Y = m.X, m.Y
		return nil
	default:
		return fmt.Errorf("line %d: vector must be [x, y] or {x, y}", value.Line)
	}
}

func (v Vec) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.SequenceNode,
		Style: yaml.FlowStyle,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(v.X, 'g', -1, 64)},
			{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(v.Y, 'g', -1, 64)},
		},
	}, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	if c.Color == nil {
		return nil, nil
	}
	n := color.NRGBAModel.Convert(c.Color).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), nil
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
}
