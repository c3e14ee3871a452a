// Command racesim plays races headlessly with a scripted shooter for both
// players and reports who won. It is used to sanity check tuning changes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/ecs/entity"
	"github.com/milk9111/crashthatcar/ecs/system"
	"github.com/milk9111/crashthatcar/logger"
	"github.com/milk9111/crashthatcar/physics"
	"github.com/milk9111/crashthatcar/prefabs"
)

type options struct {
	Races int
	Seed  int64
	// Limit is the longest a single race may run, in game seconds.
	Limit float64
	// DetonateRange is how close an armed obstacle must be to a car before
	// the bot detonates it.
	DetonateRange float64
}

type report struct {
	Races       int
	Wins        map[component.Player]int
	AtFinish    int
	Timeouts    int
	Explosions  int
	Shots       int
	TotalRaceS  float64
	LongestRace float64
}

func main() {
	races := flag.Int("races", 10, "number of races to play")
	seed := flag.Int64("seed", 1, "random seed (0 uses the clock)")
	limit := flag.Float64("limit", 120, "maximum race length in game seconds")
	rng := flag.Float64("detonate-range", 2, "distance at which armed obstacles are detonated")
	overrides := flag.String("overrides", "prefabs", "override directory for race.yaml and scene.yaml")
	debug := flag.Bool("debug", false, "log every state change")
	flag.Parse()

	log := logger.New("racesim", *debug)
	defer func() { _ = log.Sync() }()

	prefabs.SetDiskDir(*overrides)
	rep, err := run(options{Races: *races, Seed: *seed, Limit: *limit, DetonateRange: *rng}, log)
	if err != nil {
		log.Errorw("simulation failed", "error", err)
		os.Exit(1)
	}

	mean := 0.0
	if done := rep.Races - rep.Timeouts; done > 0 {
		mean = rep.TotalRaceS / float64(done)
	}
	fmt.Printf("races=%d player1=%d player2=%d at_finish=%d timeouts=%d shots=%d explosions=%d mean_race_s=%.2f longest_s=%.2f\n",
		rep.Races, rep.Wins[component.Player1], rep.Wins[component.Player2], rep.AtFinish,
		rep.Timeouts, rep.Shots, rep.Explosions, mean, rep.LongestRace)
}

func run(opts options, log *logger.Logger) (report, error) {
	rep := report{Wins: map[component.Player]int{}}

	tuning, err := prefabs.LoadTuning()
	if err != nil {
		return rep, err
	}
	tuning.Seed = opts.Seed
	spec, err := prefabs.LoadSceneSpec()
	if err != nil {
		return rep, err
	}

	world := physics.New(tuning.Physics.Step, tuning.Physics.Iterations)
	ctx := system.NewGameContext(ecs.NewWorld(), world, tuning, log)
	scene, err := entity.BuildScene(ctx, spec)
	if err != nil {
		return rep, err
	}
	// The intro is skipped: an empty camera path finishes immediately.
	controller := system.NewController(ctx, nil)
	controller.Begin()

	dt := tuning.Physics.Step
	started := 0.0
	for rep.Races < opts.Races {
		for _, ev := range controller.Frame(dt) {
			switch ev.Kind {
			case system.EventExploded:
				rep.Explosions++
			case system.EventObstacleShot:
				rep.Shots++
			}
		}

		switch ctx.Session.State {
		case component.StateTapToPlay:
			if controller.Session.Start(ctx) {
				started = ctx.Now
			}
		case component.StatePlay:
			if ctx.Now-started > opts.Limit {
				rep.Races++
				rep.Timeouts++
				log.Warnw("race timed out", "round", ctx.Session.Round)
				controller.Session.GameOver(ctx, component.Player1, false)
				controller.Replay()
				continue
			}
			shoot(ctx, controller, scene)
			detonate(ctx, controller, scene, opts.DetonateRange)
		case component.StateGameOver:
			length := ctx.Now - started
			rep.Races++
			rep.Wins[ctx.Session.Winner]++
			rep.TotalRaceS += length
			if length > rep.LongestRace {
				rep.LongestRace = length
			}
			if ctx.Session.AtFinish {
				rep.AtFinish++
			}
			log.Infow("race over", "round", ctx.Session.Round, "winner", ctx.Session.Winner, "seconds", length)
			controller.Replay()
		}
	}
	return rep, nil
}

// shoot grabs every caught obstacle and fires it at the opposing car.
func shoot(ctx *system.GameContext, c *system.Controller, scene *entity.Scene) {
	obstacles, _ := c.Obstacles.Live(ctx)
	for _, e := range obstacles {
		obs, ok := ecs.Get(ctx.World, e, component.ObstacleComponent.Kind())
		if !ok || obs.State != component.ObstacleInBarrier || !c.Obstacles.Arm(ctx, e) {
			continue
		}
		owner := component.Player1
		if obs.State == component.ObstacleBeingShotFromPlayer2 {
			owner = component.Player2
		}
		from, _ := ctx.Engine.Position(e)
		target, _ := ctx.Engine.Position(scene.Cars[owner.Opponent()])
		target.X += 3
		dir := target.Sub(from)
		dir.Y = 0
		if l := dir.Length(); l > 0 {
			dir = dir.Scale(ctx.Tuning.Shot.LaunchSpeed / l)
		}
		c.Obstacles.Shoot(ctx, dir)
	}
}

// detonate explodes armed obstacles that have come close to a car.
func detonate(ctx *system.GameContext, c *system.Controller, scene *entity.Scene, rng float64) {
	obstacles, _ := c.Obstacles.Live(ctx)
	for _, e := range obstacles {
		obs, ok := ecs.Get(ctx.World, e, component.ObstacleComponent.Kind())
		if !ok || obs.State != component.ObstacleReadyToBeExploded {
			continue
		}
		pos, _ := ctx.Engine.Position(e)
		for _, car := range scene.Cars {
			carPos, _ := ctx.Engine.Position(car)
			if planar(pos, carPos) <= rng {
				c.Obstacles.Detonate(ctx, e)
				break
			}
		}
	}
}

func planar(a, b common.Vec3) float64 {
	d := a.Sub(b)
	d.Y = 0
	return d.Length()
}
