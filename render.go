package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/ecs/system"
	"github.com/milk9111/crashthatcar/physics"
)

var (
	colorFloor    = color.NRGBA{R: 0x2b, G: 0x2f, B: 0x3a, A: 0xff}
	colorLine     = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	colorBarrier  = color.NRGBA{R: 0x7f, G: 0xd6, B: 0xff, A: 0x90}
	colorSpeedUp  = color.NRGBA{R: 0x4c, G: 0xd9, B: 0x64, A: 0xff}
	colorControl  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorText     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	obstacleColor = map[component.ObstacleState]color.NRGBA{
		component.ObstacleNormal:               {R: 0x9a, G: 0x9a, B: 0x9a, A: 0xff},
		component.ObstacleInBarrier:            {R: 0xf5, G: 0xd0, B: 0x3b, A: 0xff},
		component.ObstacleBeingShotFromPlayer1: {R: 0xf5, G: 0x8b, B: 0x3b, A: 0xff},
		component.ObstacleBeingShotFromPlayer2: {R: 0xf5, G: 0x8b, B: 0x3b, A: 0xff},
		component.ObstacleShotFromPlayer1:      {R: 0xf5, G: 0x6b, B: 0x3b, A: 0xff},
		component.ObstacleShotFromPlayer2:      {R: 0xf5, G: 0x6b, B: 0x3b, A: 0xff},
		component.ObstacleReadyToBeExploded:    {R: 0xff, G: 0x30, B: 0x30, A: 0xff},
	}
)

// Renderer draws the race top-down from the session camera.
type Renderer struct {
	proj    common.Projection
	physics *physics.World
	face    ebtext.Face
}

func NewRenderer(proj common.Projection, world *physics.World) *Renderer {
	return &Renderer{
		proj:    proj,
		physics: world,
		face:    ebtext.NewGoXFace(basicfont.Face7x13),
	}
}

func (r *Renderer) Draw(screen *ebiten.Image, ctx *system.GameContext, prompt bool) {
	screen.Fill(colorFloor)
	cam := ctx.Session.Camera
	scale := r.proj.Scale(cam)

	ecs.ForEach(ctx.World, component.BodyComponent.Kind(), func(e ecs.Entity, body *component.Body) {
		pos, ok := r.physics.Position(e)
		if !ok {
			return
		}
		clr, width := r.style(ctx.World, e, body)
		center := r.proj.Project(cam, pos)

		switch body.Shape.Kind {
		case component.ShapeBox:
			w := body.Shape.Depth * scale
			h := body.Shape.Width * scale
			vector.DrawFilledRect(screen, float32(center.X-w/2), float32(center.Y-h/2), float32(w), float32(h), clr, true)
		case component.ShapeCircle:
			rad := body.Shape.Radius * scale
			vector.DrawFilledCircle(screen, float32(center.X), float32(center.Y), float32(rad), clr, true)
			// A spoke shows the spin.
			angle := r.physics.Angle(e)
			vector.StrokeLine(screen, float32(center.X), float32(center.Y),
				float32(center.X+math.Sin(angle)*rad), float32(center.Y-math.Cos(angle)*rad), 1, colorFloor, true)
		case component.ShapeSegment:
			a := r.proj.Project(cam, pos.Add(body.Shape.From))
			b := r.proj.Project(cam, pos.Add(body.Shape.To))
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
		}
	})

	ecs.ForEach(ctx.World, component.SteeringControlComponent.Kind(), func(_ ecs.Entity, c *component.SteeringControl) {
		if !c.Visible || c.Bounds.Empty() {
			return
		}
		clr := colorControl
		clr.A = uint8(0x60 * common.Clamp(c.Opacity, 0, 1))
		b := c.Bounds
		vector.DrawFilledRect(screen, float32(b.X+4), float32(b.Y+4), float32(b.Width-8), float32(b.Height-8), clr, false)
		arrow := "<"
		if c.Direction > 0 {
			arrow = ">"
		}
		r.text(screen, arrow, b.X+b.Width/2, b.Y+b.Height/2)
	})

	if prompt {
		at := common.Vec2{X: r.proj.Width / 2, Y: r.proj.Height / 2}
		if e, ok := ecs.First(ctx.World, component.PromptTagComponent.Kind()); ok {
			if t, ok := ecs.Get(ctx.World, e, component.TransformComponent.Kind()); ok {
				at = r.proj.Project(cam, t.Position)
			}
		}
		r.text(screen, "TAP TO PLAY", at.X, at.Y)
	}
}

func (r *Renderer) style(w *ecs.World, e ecs.Entity, body *component.Body) (color.NRGBA, float32) {
	if a, ok := ecs.Get(w, e, component.AppearanceComponent.Kind()); ok {
		width := a.Width
		if width <= 0 {
			width = 2
		}
		return a.Color, width
	}
	switch body.Descriptor.Category {
	case component.CategoryObstacle:
		if o, ok := ecs.Get(w, e, component.ObstacleComponent.Kind()); ok {
			return obstacleColor[o.State], 1
		}
	case component.CategorySpeedUp:
		return colorSpeedUp, 1
	case component.CategoryBarrier:
		return colorBarrier, 1
	}
	return colorLine, 2
}

func (r *Renderer) text(screen *ebiten.Image, s string, x, y float64) {
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(colorText)
	op.PrimaryAlign = ebtext.AlignCenter
	op.SecondaryAlign = ebtext.AlignCenter
	ebtext.Draw(screen, s, r.face, op)
}
