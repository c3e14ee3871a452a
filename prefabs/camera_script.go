package prefabs

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/crashthatcar/common"
)

// Waypoint is one leg of the camera intro.
type Waypoint struct {
	Target   common.Vec3
	Duration float64
	// Hold keeps the camera where the previous leg left it.
	Hold bool
	// Home sends the camera back to its resting position.
	Home bool
}

// CameraScriptEnv is injected into the intro script as globals.
type CameraScriptEnv struct {
	TrackLength float64
	HalfWidth   float64
	Home        common.Vec3
}

// LoadCameraScript compiles and runs the named intro script and returns its
// waypoints.
func LoadCameraScript(name string, env CameraScriptEnv) ([]Waypoint, error) {
	src, err := LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load camera script %s: %w", name, err)
	}
	return RunCameraScript(src, env)
}

// RunCameraScript evaluates a camera script source.
func RunCameraScript(src []byte, env CameraScriptEnv) ([]Waypoint, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	globals := map[string]float64{
		"track_length": env.TrackLength,
		"half_width":   env.HalfWidth,
		"home_x":       env.Home.X,
		"home_y":       env.Home.Y,
		"home_z":       env.Home.Z,
	}
	for name, v := range globals {
		if err := script.Add(name, v); err != nil {
			return nil, fmt.Errorf("prefabs: camera script global %s: %w", name, err)
		}
	}

	compiled, err := script.Run()
	if err != nil {
		return nil, fmt.Errorf("prefabs: run camera script: %w", err)
	}
	if !compiled.IsDefined("waypoints") {
		return nil, fmt.Errorf("prefabs: camera script defines no waypoints")
	}

	raw := compiled.Get("waypoints").Array()
	out := make([]Waypoint, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("prefabs: camera waypoint %d is %T, want map", i, item)
		}
		wp := Waypoint{
			Target: common.Vec3{
				X: number(m["x"]),
				Y: number(m["y"]),
				Z: number(m["z"]),
			},
			Duration: number(m["duration"]),
			Hold:     truthy(m["hold"]),
			Home:     truthy(m["home"]),
		}
		if wp.Duration < 0 {
			return nil, fmt.Errorf("prefabs: camera waypoint %d has negative duration", i)
		}
		if wp.Home {
			wp.Target = env.Home
		}
		out = append(out, wp)
	}
	return out, nil
}

func number(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	}
	return false
}
