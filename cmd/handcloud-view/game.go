package main

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ncruces/zenity"

	"github.com/ayusman/handcloud/internal/render"
	"github.com/ayusman/handcloud/internal/viewer"
)

var background = color.RGBA{A: 255}

var keys = map[ebiten.Key]string{
	ebiten.KeySpace:  "Space",
	ebiten.KeyF:      "F",
	ebiten.KeyC:      "C",
	ebiten.KeyS:      "S",
	ebiten.KeyT:      "T",
	ebiten.KeyEscape: "Escape",
	ebiten.KeyQ:      "Q",
}

// game draws the cloud; the app's display loop advances it.
type game struct {
	scene *viewer.Scene
	saver *viewer.Saver
}

func newGame(scene *viewer.Scene, renderer *render.Renderer) *game {
	return &game{
		scene: scene,
		saver: viewer.NewSaver(scene, askSavePath, renderer.SavePNG),
	}
}

func (g *game) Update() error {
	for key, name := range keys {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		action := viewer.Bindings[name]
		switch action {
		case viewer.ActionQuit:
			return ebiten.Termination
		case viewer.ActionSave:
			if !g.saver.Save() {
				g.scene.SetStatus("save dialog already open")
			}
		default:
			g.scene.Apply(action)
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	snap, dots := g.scene.Frame()
	col := viewer.Color(snap)
	for _, d := range dots {
		vector.DrawFilledCircle(screen, d.X, d.Y, float32(d.Radius), col, true)
	}

	ebitenutil.DebugPrintAt(screen, g.scene.Caption(snap), 12, 12)
	ebitenutil.DebugPrintAt(screen, viewer.Help, 12, 28)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.scene.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// askSavePath shows the native save dialog. Canceling returns an empty path.
func askSavePath() (string, error) {
	path, err := zenity.SelectFileSave(
		zenity.Title("Save Snapshot"),
		zenity.Filename("handcloud.png"),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "PNG image",
			Patterns: []string{"*.png"},
		}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	return path, err
}
