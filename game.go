package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/ecs/entity"
	"github.com/milk9111/crashthatcar/ecs/system"
	"github.com/milk9111/crashthatcar/feed"
	"github.com/milk9111/crashthatcar/logger"
	"github.com/milk9111/crashthatcar/physics"
	"github.com/milk9111/crashthatcar/prefabs"
)

const (
	baseWidth  = 540
	baseHeight = 960
)

var projection = common.Projection{Width: baseWidth, Height: baseHeight, Focal: 315, Anchor: 0.7}

type Game struct {
	log        *logger.Logger
	controller *system.Controller
	physics    *physics.World
	scene      *entity.Scene

	input    *Input
	renderer *Renderer
	cues     *Cues
	gameOver *GameOverUI
	hub      *feed.Hub
	watcher  *prefabs.Watcher

	// pendingTuning holds a reloaded tuning until the race is not in play.
	pendingTuning *prefabs.TuningSpec

	overlay bool
	prompt  bool
	debug   bool
	frames  int
}

type GameOptions struct {
	Tuning prefabs.TuningSpec
	Log    *logger.Logger
	Hub    *feed.Hub
	Watch  bool
	Debug  bool
	Mute   bool
}

func NewGame(opts GameOptions) (*Game, error) {
	world := physics.New(opts.Tuning.Physics.Step, opts.Tuning.Physics.Iterations)
	ctx := system.NewGameContext(ecs.NewWorld(), world, opts.Tuning, opts.Log)

	sceneSpec, err := prefabs.LoadSceneSpec()
	if err != nil {
		return nil, err
	}
	scene, err := entity.BuildScene(ctx, sceneSpec)
	if err != nil {
		return nil, err
	}
	intro, err := loadIntro(opts.Tuning, scene)
	if err != nil {
		return nil, err
	}

	g := &Game{
		log:        ctx.Log,
		controller: system.NewController(ctx, intro),
		physics:    world,
		scene:      scene,
		input:      NewInput(projection),
		renderer:   NewRenderer(projection, world),
		hub:        opts.Hub,
		debug:      opts.Debug,
	}
	if !opts.Mute {
		g.cues = NewCues()
	}
	g.gameOver = NewGameOverUI(func() {
		g.controller.Replay()
	})
	if opts.Watch {
		w, err := prefabs.WatchOverrides()
		if err != nil {
			g.log.Warnw("hot reload disabled", "error", err)
		} else {
			g.watcher = w
		}
	}

	system.LayoutControls(ctx, baseWidth, baseHeight)
	g.controller.Begin()
	return g, nil
}

func loadIntro(t prefabs.TuningSpec, scene *entity.Scene) ([]prefabs.Waypoint, error) {
	return prefabs.LoadCameraScript(t.Camera.Script, prefabs.CameraScriptEnv{
		TrackLength: scene.TrackLength,
		HalfWidth:   t.Track.HalfWidth,
		Home:        t.Camera.Home,
	})
}

func (g *Game) Update() error {
	g.frames++
	g.reload()

	ctx := g.controller.Context()
	if g.overlay {
		g.gameOver.Update()
	} else {
		for _, ev := range g.input.Poll(ctx.Session.Camera) {
			g.controller.HandleTouch(ev)
		}
	}

	events := g.controller.Frame(1 / float64(ebiten.TPS()))
	for _, ev := range events {
		g.dispatch(ev)
	}
	if g.hub != nil {
		g.hub.Publish(events)
	}
	return nil
}

func (g *Game) dispatch(ev system.Event) {
	switch ev.Kind {
	case system.EventCue:
		g.cues.Play(ev.Cue)
	case system.EventPromptVisible:
		g.prompt = ev.Visible
	case system.EventGameOver:
		g.overlay = true
		g.gameOver.Show(ev.Label, ev.AtFinish)
	case system.EventOverlayHidden:
		g.overlay = false
	case system.EventStateChanged:
		if ev.State != component.StatePlay && g.pendingTuning != nil {
			g.applyTuning(*g.pendingTuning)
		}
	}
	if g.debug && ev.Kind != system.EventCue {
		g.log.Debugw("event", "kind", ev.Kind, "entity", ev.Entity, "state", ev.State)
	}
}

// reload drains file changes from the override directory.
func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Changes:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(change)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warnw("watch overrides", "error", err)
			}
		default:
			return
		}
	}
}

func (g *Game) applyChange(change prefabs.Change) {
	g.log.Infow("override changed", "path", change.Path, "kind", change.Kind)
	switch change.Kind {
	case prefabs.ChangeTuning:
		t, err := prefabs.LoadTuning()
		if err != nil {
			g.log.Warnw("reload tuning", "error", err)
			return
		}
		g.applyTuning(t)
	case prefabs.ChangeScript:
		intro, err := loadIntro(g.controller.Context().Tuning, g.scene)
		if err != nil {
			g.log.Warnw("reload camera script", "error", err)
			return
		}
		g.controller.Session.SetCameraPath(intro)
	case prefabs.ChangeScene:
		g.log.Infow("scene layout changes apply on restart")
	}
}

func (g *Game) applyTuning(t prefabs.TuningSpec) {
	if !g.controller.ApplyTuning(t) {
		g.pendingTuning = &t
		g.log.Infow("tuning deferred until the race ends")
		return
	}
	g.pendingTuning = nil
	g.log.Infow("tuning applied", "variant", t.Variant, "wave", t.Wave.Count)
}

func (g *Game) Draw(screen *ebiten.Image) {
	ctx := g.controller.Context()
	g.renderer.Draw(screen, ctx, g.prompt)
	if g.overlay {
		g.gameOver.Draw(screen)
	}
	if g.debug {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.1f  state: %v  round: %d  entities: %d  bodies: %d",
			ebiten.ActualFPS(), ctx.Session.State, ctx.Session.Round, ecs.Count(ctx.World), g.physics.Len()), 4, 4)
	}
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
