package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// GameOverUI is the winner overlay with a Replay button.
type GameOverUI struct {
	ui     *ebitenui.UI
	winner *widget.Text
	reason *widget.Text
}

// NewGameOverUI builds a centered panel from colored nine-slices, so no theme
// fonts need to be loaded.
func NewGameOverUI(onReplay func()) *GameOverUI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnPressedImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	title := widget.NewText(
		widget.TextOpts.Text("Game Over", &face, white),
		widget.TextOpts.WidgetOpts(center),
	)
	winner := widget.NewText(
		widget.TextOpts.Text("", &face, white),
		widget.TextOpts.WidgetOpts(center),
	)
	reason := widget.NewText(
		widget.TextOpts.Text("", &face, color.NRGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}),
		widget.TextOpts.WidgetOpts(center),
	)
	replayBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressedImg}),
		widget.ButtonOpts.Text("Replay", &face, &widget.ButtonTextColor{Idle: white}),
		widget.ButtonOpts.WidgetOpts(center),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			onReplay()
		}),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(12),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 24, Bottom: 24, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(baseWidth*2/3, baseHeight/4),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(winner)
	panel.AddChild(reason)
	panel.AddChild(replayBtn)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)

	return &GameOverUI{ui: &ebitenui.UI{Container: root}, winner: winner, reason: reason}
}

// Show fills in the result. label is "first" or "second".
func (g *GameOverUI) Show(label string, atFinish bool) {
	g.winner.Label = fmt.Sprintf("The %s car wins", label)
	if atFinish {
		g.reason.Label = "Crossed the finish line"
	} else {
		g.reason.Label = "The other car came to a stop"
	}
}

func (g *GameOverUI) Update() {
	g.ui.Update()
}

func (g *GameOverUI) Draw(screen *ebiten.Image) {
	g.ui.Draw(screen)
}
