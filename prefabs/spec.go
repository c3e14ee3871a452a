package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/crashthatcar/common"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

const (
	TuningFile = "race.yaml"
	SceneFile  = "scene.yaml"
)

// Variant selects between the two shipped control schemes.
type Variant string

const (
	VariantClassic  Variant = "classic"
	VariantControls Variant = "controls"
)

// TuningSpec holds every gameplay constant.
type TuningSpec struct {
	Name    string      `yaml:"name"`
	Variant Variant     `yaml:"variant"`
	Seed    int64       `yaml:"seed"`
	Track   TrackSpec   `yaml:"track"`
	Wave    WaveSpec    `yaml:"wave"`
	Car     CarSpec     `yaml:"car"`
	Shot    ShotSpec    `yaml:"shot"`
	Camera  CameraSpec  `yaml:"camera"`
	Physics PhysicsSpec `yaml:"physics"`
}

type TrackSpec struct {
	HalfWidth float64 `yaml:"half_width"`
	Margin    float64 `yaml:"margin"`
}

// WaveSpec drives obstacle spawning.
type WaveSpec struct {
	Count           int     `yaml:"count"`
	LaneSpacing     float64 `yaml:"lane_spacing"`
	StaggerInterval float64 `yaml:"stagger_interval"`
	ObstacleRadius  float64 `yaml:"obstacle_radius"`
	ObstacleHeight  float64 `yaml:"obstacle_height"`
	SpeedUpRadius   float64 `yaml:"speed_up_radius"`
	MaxSpin         float64 `yaml:"max_spin"`
}

type CarSpec struct {
	DriveSpeed      float64 `yaml:"drive_speed"`
	SpeedDecrement  float64 `yaml:"speed_decrement"`
	SpeedIncrement  float64 `yaml:"speed_increment"`
	StuckThreshold  float64 `yaml:"stuck_threshold"`
	SteerSpeed      float64 `yaml:"steer_speed"`
	BarrierLead     float64 `yaml:"barrier_lead"`
	ResetOnGameOver bool    `yaml:"reset_on_game_over"`
}

type ShotSpec struct {
	LaunchSpeed    float64 `yaml:"launch_speed"`
	PressedOpacity float64 `yaml:"pressed_opacity"`
}

type CameraSpec struct {
	Script string      `yaml:"script"`
	Home   common.Vec3 `yaml:"home"`
}

type PhysicsSpec struct {
	Step       float64 `yaml:"step"`
	Iterations int     `yaml:"iterations"`
}

// DefaultTuning mirrors race.yaml and is used for fields a file leaves at
// zero.
func DefaultTuning() TuningSpec {
	return TuningSpec{
		Name:    "crash_that_car",
		Variant: VariantClassic,
		Track:   TrackSpec{HalfWidth: 10, Margin: 2},
		Wave: WaveSpec{
			Count:           14,
			LaneSpacing:     3.3,
			StaggerInterval: 0.4,
			ObstacleRadius:  0.5,
			ObstacleHeight:  0.4,
			SpeedUpRadius:   0.6,
			MaxSpin:         2.0,
		},
		Car: CarSpec{
			DriveSpeed:     5,
			SpeedDecrement: 1,
			SpeedIncrement: 1.5,
			StuckThreshold: 0.01,
			SteerSpeed:     3,
			BarrierLead:    2.5,
		},
		Shot:    ShotSpec{LaunchSpeed: 10, PressedOpacity: 0.5},
		Camera:  CameraSpec{Script: "scripts/camera_intro.tengo", Home: common.Vec3{X: 0, Y: 14, Z: 0}},
		Physics: PhysicsSpec{Step: 1.0 / 60.0, Iterations: 10},
	}
}

// withDefaults fills zero fields from DefaultTuning.
func (t TuningSpec) withDefaults() TuningSpec {
	d := DefaultTuning()
	if t.Name == "" {
		t.Name = d.Name
	}
	if t.Variant == "" {
		t.Variant = d.Variant
	}
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&t.Track.HalfWidth, d.Track.HalfWidth)
	fill(&t.Track.Margin, d.Track.Margin)
	if t.Wave.Count == 0 {
		t.Wave.Count = d.Wave.Count
	}
	fill(&t.Wave.LaneSpacing, d.Wave.LaneSpacing)
	fill(&t.Wave.StaggerInterval, d.Wave.StaggerInterval)
	fill(&t.Wave.ObstacleRadius, d.Wave.ObstacleRadius)
	fill(&t.Wave.ObstacleHeight, d.Wave.ObstacleHeight)
	fill(&t.Wave.SpeedUpRadius, d.Wave.SpeedUpRadius)
	fill(&t.Wave.MaxSpin, d.Wave.MaxSpin)
	fill(&t.Car.DriveSpeed, d.Car.DriveSpeed)
	fill(&t.Car.SpeedDecrement, d.Car.SpeedDecrement)
	fill(&t.Car.SpeedIncrement, d.Car.SpeedIncrement)
	fill(&t.Car.StuckThreshold, d.Car.StuckThreshold)
	fill(&t.Car.SteerSpeed, d.Car.SteerSpeed)
	fill(&t.Car.BarrierLead, d.Car.BarrierLead)
	fill(&t.Shot.LaunchSpeed, d.Shot.LaunchSpeed)
	fill(&t.Shot.PressedOpacity, d.Shot.PressedOpacity)
	if t.Camera.Script == "" {
		t.Camera.Script = d.Camera.Script
	}
	if t.Camera.Home == (common.Vec3{}) {
		t.Camera.Home = d.Camera.Home
	}
	fill(&t.Physics.Step, d.Physics.Step)
	if t.Physics.Iterations == 0 {
		t.Physics.Iterations = d.Physics.Iterations
	}
	return t
}

// Validate rejects tunings the game cannot run with.
func (t TuningSpec) Validate() error {
	if t.Variant != VariantClassic && t.Variant != VariantControls {
		return fmt.Errorf("prefabs: unknown variant %q", t.Variant)
	}
	if t.Track.HalfWidth-t.Track.Margin < 1 {
		return fmt.Errorf("prefabs: track half_width %.2f leaves no room inside margin %.2f", t.Track.HalfWidth, t.Track.Margin)
	}
	if t.Wave.Count < 0 {
		return fmt.Errorf("prefabs: negative wave count %d", t.Wave.Count)
	}
	if t.Physics.Step <= 0 {
		return fmt.Errorf("prefabs: physics step must be positive")
	}
	return nil
}

// LoadTuning reads race.yaml, applies defaults and validates.
func LoadTuning() (TuningSpec, error) {
	spec, err := LoadSpec[TuningSpec](TuningFile)
	if err != nil {
		return TuningSpec{}, err
	}
	return finishTuning(spec)
}

// ParseTuning decodes a tuning document from memory.
func ParseTuning(data []byte) (TuningSpec, error) {
	var spec TuningSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return TuningSpec{}, fmt.Errorf("prefabs: unmarshal tuning: %w", err)
	}
	return finishTuning(spec)
}

func finishTuning(spec TuningSpec) (TuningSpec, error) {
	spec = spec.withDefaults()
	if err := spec.Validate(); err != nil {
		return TuningSpec{}, err
	}
	return spec, nil
}

// SceneSpec lists the named nodes of the race scene.
type SceneSpec struct {
	Name  string     `yaml:"name"`
	Nodes []NodeSpec `yaml:"nodes"`
}

// Node roles understood by the scene builder.
const (
	RoleCar        = "car"
	RoleBarrier    = "barrier"
	RoleFinishLine = "finish_line"
	RoleBorderLine = "border_line"
	RoleMiddleLine = "middle_line"
	RoleCamera     = "camera"
	RolePrompt     = "prompt"
	RoleSteering   = "steering"
)

type NodeSpec struct {
	Name      string      `yaml:"name"`
	Role      string      `yaml:"role"`
	Player    int         `yaml:"player"`
	Direction float64     `yaml:"direction"`
	Position  common.Vec3 `yaml:"position"`
	Shape     ShapeSpec   `yaml:"shape"`
	Mass      float64     `yaml:"mass"`
	Color     *YAMLColor  `yaml:"color"`
}

type ShapeSpec struct {
	Kind   string      `yaml:"kind"`
	Width  float64     `yaml:"width"`
	Depth  float64     `yaml:"depth"`
	Radius float64     `yaml:"radius"`
	From   common.Vec3 `yaml:"from"`
	To     common.Vec3 `yaml:"to"`
}

// Find returns the node with the given name.
func (s SceneSpec) Find(name string) (NodeSpec, bool) {
	for _, n := range s.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeSpec{}, false
}

func LoadSceneSpec() (SceneSpec, error) {
	return LoadSpec[SceneSpec](SceneFile)
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
