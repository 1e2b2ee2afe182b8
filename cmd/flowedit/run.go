package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rendis/flowedit/internal/editor"
	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/internal/render"
	"github.com/rendis/flowedit/pkg/schema"
)

const helpLine = "drag:move/connect  ctrl+a:all  i:invert  n:new  x:remove  [ ]:resize  +/-:zoom  del:links  esc:cancel  q:quit"

func runCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Edit the sample workflow in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			return runTerminal(cmd.Context(), cfg)
		},
	}
}

// terminal hosts an editor on a tcell screen. Everything runs on the event
// loop goroutine.
type terminal struct {
	app     *app
	screen  tcell.Screen
	pressed bool
	warning string
	added   int
}

func runTerminal(ctx context.Context, cfg Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("run needs an interactive terminal; try demo or inspect")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	t := &terminal{}
	t.app = newApp(cfg, logFile, editor.NotifierFunc(func(msg string) { t.warning = msg }))
	defer t.app.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := t.app.logEvents(ctx); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.Clear()
	t.screen = screen

	t.app.log.Info("terminal session started", "editor_id", t.app.editor.ID())
	t.loop()
	return nil
}

func (t *terminal) loop() {
	for {
		t.app.canvas.Flush()
		t.draw()
		t.screen.Show()

		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			if t.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			t.handleMouse(ev)
		case nil:
			return
		}
	}
}

func (t *terminal) draw() {
	t.screen.Clear()
	w, h := t.screen.Size()
	if h < 2 {
		return
	}
	ed := t.app.editor
	grid := render.Raster(render.Build(ed), w, h-2)
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			if ch := grid.At(col, row); ch != ' ' {
				t.screen.SetContent(col, row, ch, nil, tcell.StyleDefault)
			}
		}
	}

	status := fmt.Sprintf(" %s | scale %.1f | selected %d | cursor %s",
		ed.Status(), ed.Scale(), len(ed.SelectedItems()), ed.Cursor())
	if t.warning != "" {
		status += " | " + t.warning
	}
	t.print(0, h-2, status, tcell.StyleDefault.Reverse(true))
	t.print(0, h-1, helpLine, tcell.StyleDefault.Dim(true))
}

func (t *terminal) print(x, y int, s string, style tcell.Style) {
	for i, ch := range []rune(s) {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (t *terminal) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := t.aim(x, y)
	ed := t.app.editor
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		ed.Wheel(1)
	case buttons&tcell.WheelDown != 0:
		ed.Wheel(-1)
	case buttons&tcell.Button1 != 0:
		if t.pressed {
			ed.PointerMove(p, true)
			return
		}
		t.pressed = true
		t.warning = ""
		ed.PointerDown(p, modifiers(ev.Modifiers()))
	case t.pressed:
		t.pressed = false
		ed.PointerUp(p)
	default:
		ed.PointerMove(p, false)
	}
}

// aim returns the screen point for a cell. A cell showing a visible anchor
// maps onto the anchor center, since a cell is larger than the anchor.
func (t *terminal) aim(col, row int) geometry.Point {
	scale := t.app.editor.Scale()
	for _, n := range t.app.canvas.Nodes() {
		for _, a := range n.Anchors() {
			if !n.AnchorVisible(a.Side()) {
				continue
			}
			center := n.AnchorCenter(a.Side())
			if c, r := render.CellAt(center, scale); c == col && r == row {
				return center.Scale(scale)
			}
		}
	}
	return render.ScreenPoint(col, row)
}

func modifiers(m tcell.ModMask) editor.Modifiers {
	var out editor.Modifiers
	if m&(tcell.ModCtrl|tcell.ModMeta) != 0 {
		out |= editor.ModCtrl
	}
	if m&tcell.ModShift != 0 {
		out |= editor.ModShift
	}
	return out
}

// handleKey applies a key press and reports whether the session should end.
func (t *terminal) handleKey(ev *tcell.EventKey) bool {
	ed := t.app.editor
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlA:
		ed.KeyDown(editor.KeyA, editor.ModCtrl)
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.KeyDown(editor.KeyDelete, 0)
	case tcell.KeyEscape:
		ed.KeyDown(editor.KeyEscape, 0)
	case tcell.KeyRune:
		return t.handleRune(ev.Rune())
	}
	return false
}

func (t *terminal) handleRune(r rune) bool {
	ed := t.app.editor
	switch r {
	case 'q':
		return true
	case 'i':
		ed.Invert()
	case '+', '=':
		ed.Wheel(1)
	case '-':
		ed.Wheel(-1)
	case 'n':
		t.added++
		p := ed.MousePosition()
		t.app.items.Add(newStep(fmt.Sprintf("step %d", t.added), schema.StepKindNormal, p.X, p.Y))
	case 'x':
		for _, it := range ed.SelectedItems() {
			t.app.items.Remove(it)
		}
	case '[':
		t.resizeSelected(-t.app.canvas.GridSize())
	case ']':
		t.resizeSelected(t.app.canvas.GridSize())
	}
	return false
}

// resizeSelected grows or shrinks every selected node by delta and snaps
// the result as an interactive resize would on release.
func (t *terminal) resizeSelected(delta float64) {
	c := t.app.canvas
	for _, n := range c.Nodes() {
		if !n.Selected() {
			continue
		}
		if err := c.ResizeNode(n.ID(), delta, delta/2); err != nil {
			t.app.log.Debug("resize failed", "node_id", n.ID().String(), "error", err)
			continue
		}
		_ = c.FinishResize(n.ID())
	}
	// the envelope follows the new sizes
	t.app.editor.RecomputeSelectedItems()
}
