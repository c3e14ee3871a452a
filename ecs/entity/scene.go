package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/ecs/system"
	"github.com/milk9111/crashthatcar/prefabs"
)

// SceneSetupError reports a required scene node that is missing or unusable.
type SceneSetupError struct {
	Node string
	Err  error
}

func (e *SceneSetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scene setup: node %q: %v", e.Node, e.Err)
	}
	return fmt.Sprintf("scene setup: missing node %q", e.Node)
}

func (e *SceneSetupError) Unwrap() error {
	return e.Err
}

// Required node names.
const (
	NodePlayer1Car     = "player1Car"
	NodePlayer2Car     = "player2Car"
	NodePlayer1Barrier = "player1Barrier"
	NodePlayer2Barrier = "player2Barrier"
	NodeFinishLine     = "finishLine"
	NodeCamera         = "mainCamera"
	NodePrompt         = "tapToPlayLogo"
)

var requiredNodes = []string{
	NodePlayer1Car,
	NodePlayer2Car,
	NodePlayer1Barrier,
	NodePlayer2Barrier,
	NodeFinishLine,
	NodeCamera,
	NodePrompt,
}

// Scene indexes the entities built from a scene spec.
type Scene struct {
	Cars        map[component.Player]ecs.Entity
	Barriers    map[component.Player]ecs.Entity
	FinishLine  ecs.Entity
	Lines       []ecs.Entity
	Camera      ecs.Entity
	Prompt      ecs.Entity
	Controls    []ecs.Entity
	TrackLength float64
}

type roleBuildFn func(ctx *system.GameContext, scene *Scene, e ecs.Entity, node prefabs.NodeSpec) error

var roleRegistry = map[string]roleBuildFn{
	prefabs.RoleCar:        addCar,
	prefabs.RoleBarrier:    addBarrier,
	prefabs.RoleFinishLine: addLine(component.CategoryFinishLine),
	prefabs.RoleBorderLine: addLine(component.CategoryBorderLine),
	prefabs.RoleMiddleLine: addLine(component.CategoryMiddleLine),
	prefabs.RoleCamera:     addCamera,
	prefabs.RolePrompt:     addPrompt,
	prefabs.RoleSteering:   addSteering,
}

// BuildScene creates every node of spec in the world and the engine. A
// missing required node aborts with a *SceneSetupError before anything is
// built.
func BuildScene(ctx *system.GameContext, spec prefabs.SceneSpec) (*Scene, error) {
	if ctx == nil || ctx.World == nil || ctx.Engine == nil {
		return nil, fmt.Errorf("build scene: context is incomplete")
	}
	for _, name := range requiredNodes {
		if _, ok := spec.Find(name); !ok {
			return nil, &SceneSetupError{Node: name}
		}
	}

	scene := &Scene{
		Cars:     map[component.Player]ecs.Entity{},
		Barriers: map[component.Player]ecs.Entity{},
	}
	for _, node := range spec.Nodes {
		build, ok := roleRegistry[node.Role]
		if !ok {
			return nil, &SceneSetupError{Node: node.Name, Err: fmt.Errorf("unknown role %q", node.Role)}
		}
		e := ecs.CreateEntity(ctx.World)
		if err := ecs.Add(ctx.World, e, component.NameComponent.Kind(), &component.Name{Value: node.Name}); err != nil {
			return nil, &SceneSetupError{Node: node.Name, Err: err}
		}
		if node.Color != nil {
			c := color.NRGBAModel.Convert(node.Color.Color).(color.NRGBA)
			if err := ecs.Add(ctx.World, e, component.AppearanceComponent.Kind(), &component.Appearance{Color: c, Width: 2, AntiAlias: true}); err != nil {
				return nil, &SceneSetupError{Node: node.Name, Err: err}
			}
		}
		if err := build(ctx, scene, e, node); err != nil {
			return nil, &SceneSetupError{Node: node.Name, Err: err}
		}
	}

	for _, p := range []component.Player{component.Player1, component.Player2} {
		if _, ok := scene.Cars[p]; !ok {
			return nil, &SceneSetupError{Node: p.String() + "Car", Err: fmt.Errorf("no car for %v", p)}
		}
		if _, ok := scene.Barriers[p]; !ok {
			return nil, &SceneSetupError{Node: p.String() + "Barrier", Err: fmt.Errorf("no barrier for %v", p)}
		}
	}
	ctx.Log.Infow("scene built", "name", spec.Name, "nodes", len(spec.Nodes), "track_length", scene.TrackLength)
	return scene, nil
}

func player(node prefabs.NodeSpec) (component.Player, error) {
	switch component.Player(node.Player) {
	case component.Player1:
		return component.Player1, nil
	case component.Player2:
		return component.Player2, nil
	}
	return 0, fmt.Errorf("player must be 1 or 2, got %d", node.Player)
}

func shape(spec prefabs.ShapeSpec) (component.Shape, error) {
	s := component.Shape{
		Width:  spec.Width,
		Depth:  spec.Depth,
		Radius: spec.Radius,
		From:   spec.From,
		To:     spec.To,
	}
	switch spec.Kind {
	case "box":
		s.Kind = component.ShapeBox
		if s.Width <= 0 || s.Depth <= 0 {
			return s, fmt.Errorf("box needs width and depth")
		}
	case "circle":
		s.Kind = component.ShapeCircle
		if s.Radius <= 0 {
			return s, fmt.Errorf("circle needs a radius")
		}
	case "segment":
		s.Kind = component.ShapeSegment
		if s.From == s.To {
			return s, fmt.Errorf("segment endpoints coincide")
		}
	default:
		return s, fmt.Errorf("unknown shape kind %q", spec.Kind)
	}
	return s, nil
}

func addBody(ctx *system.GameContext, e ecs.Entity, node prefabs.NodeSpec, category component.Category, kind component.BodyKind) error {
	desc, ok := system.Classify(category)
	if !ok {
		return fmt.Errorf("unclassified category %v", category)
	}
	s, err := shape(node.Shape)
	if err != nil {
		return err
	}
	body := component.Body{
		Descriptor: desc,
		Kind:       kind,
		Shape:      s,
		Mass:       node.Mass,
		Position:   node.Position,
	}
	if kind == component.BodyDynamic && body.Mass <= 0 {
		body.Mass = 1
	}
	if err := ecs.Add(ctx.World, e, component.BodyComponent.Kind(), &body); err != nil {
		return fmt.Errorf("add body: %w", err)
	}
	if err := ctx.Engine.AddBody(e, body); err != nil {
		return fmt.Errorf("add body to engine: %w", err)
	}
	return nil
}

func addCar(ctx *system.GameContext, scene *Scene, e ecs.Entity, node prefabs.NodeSpec) error {
	p, err := player(node)
	if err != nil {
		return err
	}
	if _, dup := scene.Cars[p]; dup {
		return fmt.Errorf("second car for %v", p)
	}
	if err := addBody(ctx, e, node, component.CategoryCar, component.BodyDynamic); err != nil {
		return err
	}
	if err := ecs.Add(ctx.World, e, component.CarComponent.Kind(), &component.Car{Player: p, Start: node.Position}); err != nil {
		return fmt.Errorf("add car: %w", err)
	}
	scene.Cars[p] = e
	return nil
}

func addBarrier(ctx *system.GameContext, scene *Scene, e ecs.Entity, node prefabs.NodeSpec) error {
	p, err := player(node)
	if err != nil {
		return err
	}
	if err := addBody(ctx, e, node, component.CategoryBarrier, component.BodyKinematic); err != nil {
		return err
	}
	if err := ecs.Add(ctx.World, e, component.BarrierComponent.Kind(), &component.Barrier{Owner: p, Lead: ctx.Tuning.Car.BarrierLead}); err != nil {
		return fmt.Errorf("add barrier: %w", err)
	}
	scene.Barriers[p] = e
	return nil
}

func addLine(category component.Category) roleBuildFn {
	return func(ctx *system.GameContext, scene *Scene, e ecs.Entity, node prefabs.NodeSpec) error {
		if err := addBody(ctx, e, node, category, component.BodyStatic); err != nil {
			return err
		}
		if category == component.CategoryFinishLine {
			scene.FinishLine = e
			scene.TrackLength = node.Position.X
		}
		scene.Lines = append(scene.Lines, e)
		return nil
	}
}

func addCamera(ctx *system.GameContext, scene *Scene, e ecs.Entity, node prefabs.NodeSpec) error {
	if err := ecs.Add(ctx.World, e, component.CameraTagComponent.Kind(), &component.CameraTag{}); err != nil {
		return fmt.Errorf("add camera tag: %w", err)
	}
	if err := ecs.Add(ctx.World, e, component.TransformComponent.Kind(), &component.Transform{Position: node.Position}); err != nil {
		return fmt.Errorf("add transform: %w", err)
	}
	scene.Camera = e
	return nil
}

func addPrompt(ctx *system.GameContext, scene *Scene, e ecs.Entity, node prefabs.NodeSpec) error {
	if err := ecs.Add(ctx.World, e, component.PromptTagComponent.Kind(), &component.PromptTag{}); err != nil {
		return fmt.Errorf("add prompt tag: %w", err)
	}
	if err := ecs.Add(ctx.World, e, component.TransformComponent.Kind(), &component.Transform{Position: node.Position}); err != nil {
		return fmt.Errorf("add transform: %w", err)
	}
	scene.Prompt = e
	return nil
}

func addSteering(ctx *system.GameContext, scene *Scene, e ecs.Entity, node prefabs.NodeSpec) error {
	p, err := player(node)
	if err != nil {
		return err
	}
	if node.Direction != -1 && node.Direction != 1 {
		return fmt.Errorf("steering direction must be -1 or 1, got %v", node.Direction)
	}
	if err := ecs.Add(ctx.World, e, component.SteeringControlComponent.Kind(), &component.SteeringControl{
		Owner:     p,
		Direction: node.Direction,
		Opacity:   1,
	}); err != nil {
		return fmt.Errorf("add steering control: %w", err)
	}
	scene.Controls = append(scene.Controls, e)
	return nil
}
