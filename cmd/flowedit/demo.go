package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/internal/editor"
	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/internal/render"
	"github.com/rendis/flowedit/pkg/schema"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgYellow)
	subtle = color.New(color.FgHiBlack)
)

type demoOptions struct {
	cols, rows int
	png        string
	noColor    bool
}

func demoCmd(root *rootOptions) *cobra.Command {
	opts := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted editing session and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			if opts.noColor {
				color.NoColor = true
			}
			return runDemo(cmd, cfg, opts)
		},
	}
	cmd.Flags().IntVar(&opts.cols, "cols", 60, "raster width in cells")
	cmd.Flags().IntVar(&opts.rows, "rows", 24, "raster height in cells")
	cmd.Flags().StringVar(&opts.png, "png", "", "write a graphviz PNG of the result to this path")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	return cmd
}

// demo drives an editor the way a user would, through pointer and key
// events only.
type demo struct {
	out      io.Writer
	app      *app
	warnings []string
}

func runDemo(cmd *cobra.Command, cfg Config, opts *demoOptions) error {
	d := &demo{out: cmd.OutOrStdout()}
	d.app = newApp(cfg, cmd.ErrOrStderr(), editor.NotifierFunc(func(msg string) {
		d.warnings = append(d.warnings, msg)
	}))
	defer d.app.close()
	if err := d.app.logEvents(cmd.Context()); err != nil {
		return err
	}

	brand.Fprintf(d.out, "flowedit demo %s\n", version)
	subtle.Fprintf(d.out, "editor %s, %d nodes, %d links\n\n",
		d.app.editor.ID(), d.app.canvas.NodeCount(), d.app.canvas.LinkCount())

	if err := d.script(); err != nil {
		return err
	}

	d.app.editor.SetScale(1)
	snap := render.Build(d.app.editor)
	snap.Title = "sample workflow"

	brand.Fprintln(d.out, "\n== canvas ==")
	fmt.Fprintln(d.out, render.RenderASCII(snap, opts.cols, opts.rows))
	brand.Fprintln(d.out, "\n== mermaid ==")
	fmt.Fprint(d.out, render.RenderMermaid(snap))

	if opts.png != "" {
		png, err := render.RenderImage(cmd.Context(), snap)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.png, png, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.png, err)
		}
		good.Fprintf(d.out, "\nwrote %s (%d bytes)\n", opts.png, len(png))
	}
	return nil
}

func (d *demo) script() error {
	ed := d.app.editor
	c := d.app.canvas

	notify := newStep("notify", schema.StepKindNormal, 260, 120)
	d.app.items.Add(notify)
	c.Flush()
	d.report("add notify through the collection", fmt.Sprintf("%d nodes", c.NodeCount()))

	fetch, err := d.node("fetch")
	if err != nil {
		return err
	}
	notifyNode, err := d.node("notify")
	if err != nil {
		return err
	}

	d.drag(anchor(fetch, schema.SideRight), anchor(notifyNode, schema.SideTop), 0)
	d.report("connect fetch.right to notify.top", d.lastWarning())

	d.drag(anchor(fetch, schema.SideRight), anchor(notifyNode, schema.SideLeft), 0)
	d.report("connect fetch.right to notify.left", fmt.Sprintf("fetch jumps to %v, %d links", findStep(d.app.items.Items(), "fetch").Relation(schema.RelationJumpTarget), c.LinkCount()))

	d.drag(geometry.Pt(700, 500), geometry.Pt(0, 0), 0)
	d.report("marquee over the whole flow", d.selection())

	ed.Invert()
	d.report("invert", d.selection())

	ed.KeyDown(editor.KeyA, editor.ModCtrl)
	env, _ := ed.Envelope()
	d.drag(env.Center(), env.Center().Add(geometry.Vector{X: 33, Y: 27}), 0)
	moved, _ := ed.Envelope()
	d.report("move the whole selection", fmt.Sprintf("envelope %v -> %v", env.Origin(), moved.Origin()))

	ed.UnselectAll()
	start := notifyNode.Bounds().Center()
	d.drag(start, start.Add(geometry.Vector{X: 43, Y: 61}), 0)
	d.report("drag notify", fmt.Sprintf("now at %v", notifyNode.Position()))

	for _, l := range c.Links() {
		if l.Start().Node == fetch.ID() && l.Start().Side == schema.SideRight {
			p := l.Points()
			mid := geometry.BezierPoint(p[0], p[1], p[2], p[3], 0.5)
			d.drag(mid, mid, 0)
			break
		}
	}
	before := c.LinkCount()
	ed.KeyDown(editor.KeyDelete, 0)
	d.report("click the jump link and press delete", fmt.Sprintf("%d -> %d links", before, c.LinkCount()))

	for range 3 {
		ed.Wheel(1)
	}
	d.report("zoom in three notches", fmt.Sprintf("scale %.1f", ed.Scale()))

	retry := findStep(d.app.items.Items(), "retry")
	d.app.items.Remove(retry)
	check := findStep(d.app.items.Items(), "check")
	d.report("remove retry from the collection",
		fmt.Sprintf("check jumps to %v, %d nodes", check.Relation(schema.RelationJumpTarget), c.NodeCount()))

	c.Flush()
	return nil
}

// drag presses at from, moves to to and releases, all in canvas
// coordinates.
func (d *demo) drag(from, to geometry.Point, mods editor.Modifiers) {
	ed := d.app.editor
	s := ed.Scale()
	ed.PointerDown(from.Scale(s), mods)
	ed.PointerMove(to.Scale(s), true)
	ed.PointerUp(to.Scale(s))
	d.app.canvas.Flush()
}

func (d *demo) node(name string) (*canvas.Node, error) {
	it := findStep(d.app.items.Items(), name)
	if it == nil {
		return nil, fmt.Errorf("sample step %q missing", name)
	}
	n, ok := d.app.canvas.Find(it)
	if !ok {
		return nil, fmt.Errorf("step %q has no node", name)
	}
	return n, nil
}

func anchor(n *canvas.Node, side schema.Side) geometry.Point {
	return n.AnchorCenter(side)
}

func (d *demo) selection() string {
	var names []string
	for _, it := range d.app.editor.SelectedItems() {
		names = append(names, fmt.Sprint(it))
	}
	if len(names) == 0 {
		return "nothing selected"
	}
	return "selected " + strings.Join(names, ", ")
}

func (d *demo) lastWarning() string {
	if len(d.warnings) == 0 {
		return ""
	}
	return d.warnings[len(d.warnings)-1]
}

func (d *demo) report(action, result string) {
	fmt.Fprintf(d.out, "%s ", subtle.Sprint("-"))
	fmt.Fprint(d.out, action)
	if len(d.warnings) > 0 && result == d.lastWarning() {
		bad.Fprintf(d.out, "  rejected: %s\n", result)
		d.warnings = nil
		return
	}
	good.Fprintf(d.out, "  %s\n", result)
}
