package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/internal/events"
	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

type item struct {
	name string
	spec canvas.NodeSpec
	rel  map[schema.Relation]any
}

func newItem(name string, kind schema.StepKind, x, y float64) *item {
	return &item{
		name: name,
		spec: canvas.NodeSpec{Kind: kind, X: x, Y: y, Width: 100, Height: 40},
		rel:  make(map[schema.Relation]any),
	}
}

func (i *item) NodeSpec() canvas.NodeSpec { return i.spec }
func (i *item) Relation(slot schema.Relation) any { return i.rel[slot] }
func (i *item) SetRelation(slot schema.Relation, t any) {
	if t == nil {
		delete(i.rel, slot)
		return
	}
	i.rel[slot] = t
}

type fixture struct {
	c     *canvas.Canvas
	e     *Editor
	warns []string
	ids   []canvas.NodeID
}

func setup(t *testing.T, items ...*item) *fixture {
	t.Helper()
	f := &fixture{c: canvas.New(canvas.WithExtent(1000, 800))}
	f.e = New(f.c, WithID("ed-test"), WithNotifier(NotifierFunc(func(m string) {
		f.warns = append(f.warns, m)
	})))
	for _, it := range items {
		f.ids = append(f.ids, f.c.AddNode(it, canvas.SpecFor(it)))
	}
	f.c.Flush()
	return f
}

func (f *fixture) node(i int) *canvas.Node {
	n, _ := f.c.Node(f.ids[i])
	return n
}

func (f *fixture) drag(from, to geometry.Point, mods Modifiers) {
	f.e.PointerDown(from, mods)
	f.e.PointerMove(geometry.Mid(from, to), true)
	f.e.PointerMove(to, true)
	f.e.PointerUp(to)
}

func TestScenarioConnectBottomToTop(t *testing.T) {
	a, b := newItem("a", schema.StepKindNormal, 0, 0), newItem("b", schema.StepKindNormal, 0, 200)
	f := setup(t, a, b)

	f.e.PointerDown(geometry.Pt(50, 40), 0)
	assert.Equal(t, schema.StatusDrawing, f.e.Status())
	assert.Equal(t, CursorCross, f.e.Cursor())
	_, drawing := f.e.Transient()
	assert.True(t, drawing)

	f.e.PointerMove(geometry.Pt(50, 150), true)
	f.e.PointerUp(geometry.Pt(50, 200))

	assert.Equal(t, b, a.rel[schema.RelationNext])
	assert.Equal(t, a, b.rel[schema.RelationPrevious])
	assert.Equal(t, 1, f.c.LinkCount())
	assert.Len(t, f.c.Links(), 1, "transient link removed")
	assert.Equal(t, schema.StatusNone, f.e.Status())
	assert.Equal(t, CursorDefault, f.e.Cursor())
	assert.Empty(t, f.warns)
}

func TestScenarioRejectTopToBottom(t *testing.T) {
	a, b := newItem("a", schema.StepKindNormal, 0, 100), newItem("b", schema.StepKindNormal, 200, 300)
	f := setup(t, a, b)

	f.drag(geometry.Pt(50, 100), geometry.Pt(250, 340), 0)

	require.Len(t, f.warns, 1)
	assert.Contains(t, f.warns[0], "Bottom to Top")
	assert.Equal(t, 0, f.c.LinkCount())
	assert.Empty(t, f.c.Links())
	assert.Empty(t, a.rel)
	assert.Empty(t, b.rel)
	assert.Equal(t, schema.StatusNone, f.e.Status())
}

func TestDrawingReleasedOnEmptyCanvasDoesNothing(t *testing.T) {
	a, b := newItem("a", schema.StepKindNormal, 0, 0), newItem("b", schema.StepKindNormal, 0, 200)
	f := setup(t, a, b)

	f.drag(geometry.Pt(50, 40), geometry.Pt(600, 600), 0)
	assert.Empty(t, f.c.Links())
	assert.Empty(t, f.warns)
}

func TestScenarioMarqueeThenInvert(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 20, 20)
	b := newItem("b", schema.StepKindNormal, 220, 20)
	c := newItem("c", schema.StepKindNormal, 420, 20)
	d := newItem("d", schema.StepKindNormal, 20, 400)
	f := setup(t, a, b, c, d)

	f.e.PointerDown(geometry.Pt(5, 5), 0)
	assert.Equal(t, schema.StatusSelecting, f.e.Status())
	marquee, ok := f.e.Marquee()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 5, Y: 5}, marquee)

	f.e.PointerMove(geometry.Pt(600, 100), true)
	assert.Equal(t, []any{a, b, c}, f.e.SelectedItems())
	env, ok := f.e.Envelope()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 20, Y: 20, Width: 500, Height: 40}, env)

	f.e.PointerUp(geometry.Pt(600, 100))
	_, ok = f.e.Marquee()
	assert.False(t, ok)

	f.e.Invert()
	assert.Equal(t, []any{d}, f.e.SelectedItems())
	_, ok = f.e.Envelope()
	assert.False(t, ok, "one node has no envelope")
}

func TestMarqueeContainmentIsBoundaryInclusive(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 20, 20)
	f := setup(t, a)

	f.e.PointerDown(geometry.Pt(200, 100), 0)
	f.e.PointerMove(geometry.Pt(20, 20), true)
	assert.Equal(t, []any{a}, f.e.SelectedItems(), "touching the boundary counts")

	f.e.PointerMove(geometry.Pt(21, 20), true)
	assert.Empty(t, f.e.SelectedItems(), "one unit of overhang excludes")
	f.e.PointerUp(geometry.Pt(21, 20))
}

func TestMarqueeBelowOneUnitSelectsNothing(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 20, 20)
	f := setup(t, a)
	require.NoError(t, f.e.SelectNode(f.ids[0], true))

	f.e.PointerDown(geometry.Pt(500, 500), ModCtrl)
	f.e.PointerMove(geometry.Pt(500.5, 500.5), true)
	assert.Equal(t, []any{a}, f.e.SelectedItems())
	f.e.PointerUp(geometry.Pt(500.5, 500.5))
}

func TestScenarioDragClampsAtOrigin(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 0, 0)
	f := setup(t, a)

	f.e.PointerDown(geometry.Pt(50, 20), 0)
	assert.Equal(t, schema.StatusMoving, f.e.Status())
	assert.Equal(t, CursorMove, f.e.Cursor())

	f.e.PointerMove(geometry.Pt(40, 10), true)
	assert.Equal(t, geometry.Pt(0, 0), f.node(0).Position())

	f.e.PointerUp(geometry.Pt(40, 10))
	assert.Equal(t, geometry.Pt(0, 0), f.node(0).Position())
	assert.Equal(t, []any{a}, f.e.SelectedItems(), "clicked node is selected")
}

func TestDragClampsToExtentAndSnaps(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 0, 0)
	f := setup(t, a)

	f.e.PointerDown(geometry.Pt(50, 20), 0)
	f.e.PointerMove(geometry.Pt(5000, 5000), true)
	assert.Equal(t, geometry.Pt(900, 760), f.node(0).Position())

	f.e.PointerMove(geometry.Pt(83.4, 46.6), true)
	assert.Equal(t, geometry.Pt(33, 27), f.node(0).Position(), "rounded to whole units")

	f.e.PointerUp(geometry.Pt(83.4, 46.6))
	assert.Equal(t, geometry.Pt(40, 20), f.node(0).Position())
	assert.True(t, f.node(0).Dirty())
}

func TestDragMovesLinkedCurves(t *testing.T) {
	a, b := newItem("a", schema.StepKindNormal, 0, 0), newItem("b", schema.StepKindNormal, 0, 200)
	f := setup(t, a, b)
	require.NoError(t, f.c.SetRelation(f.ids[0], schema.RelationNext, b))

	f.e.PointerDown(geometry.Pt(50, 220), 0)
	f.e.PointerMove(geometry.Pt(150, 320), true)

	l, ok := f.c.Link(f.node(1).Anchor(schema.SideTop).Link())
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(150, 300), l.Points()[3])
	f.e.PointerUp(geometry.Pt(150, 320))
}

func TestLockedNodeDoesNotMove(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 100, 100)
	a.spec.Locked = true
	f := setup(t, a)

	f.e.PointerDown(geometry.Pt(150, 120), 0)
	assert.Equal(t, schema.StatusMoving, f.e.Status())
	assert.Equal(t, CursorDefault, f.e.Cursor())

	f.e.PointerMove(geometry.Pt(300, 300), true)
	f.e.PointerUp(geometry.Pt(300, 300))
	assert.Equal(t, geometry.Pt(100, 100), f.node(0).Position())
}

func TestHiddenAnchorStartsMoveInstead(t *testing.T) {
	begin := newItem("begin", schema.StepKindBegin, 0, 0)
	f := setup(t, begin)

	f.e.PointerDown(geometry.Pt(50, 0), 0)
	assert.Equal(t, schema.StatusMoving, f.e.Status())
	f.e.PointerUp(geometry.Pt(50, 0))
}

func TestPressOnUpperBodyMovesUpperNode(t *testing.T) {
	lower := newItem("lower", schema.StepKindNormal, 0, 0)
	upper := newItem("upper", schema.StepKindNormal, 0, 20)
	upper.spec.Height = 60
	f := setup(t, lower, upper)

	// lower's bottom anchor at (50,40) is covered by upper.
	f.e.PointerDown(geometry.Pt(50, 40), 0)
	assert.Equal(t, schema.StatusMoving, f.e.Status())
	_, drawing := f.e.Transient()
	assert.False(t, drawing)
	assert.True(t, f.node(1).Selected())
	assert.False(t, f.node(0).Selected())

	f.e.PointerMove(geometry.Pt(50, 60), true)
	f.e.PointerUp(geometry.Pt(50, 60))
	assert.Equal(t, geometry.Pt(0, 40), f.node(1).Position())
	assert.Equal(t, geometry.Pt(0, 0), f.node(0).Position())
}

func TestDrawingReleasedOverHiddenAnchorDoesNothing(t *testing.T) {
	src := newItem("src", schema.StepKindNormal, 300, 0)
	lower := newItem("lower", schema.StepKindNormal, 0, 40)
	upper := newItem("upper", schema.StepKindNormal, 0, 0)
	upper.spec.Height = 60
	f := setup(t, src, lower, upper)

	// lower's top anchor at (50,40) is covered by upper.
	f.drag(geometry.Pt(350, 40), geometry.Pt(50, 40), 0)
	assert.Equal(t, schema.StatusNone, f.e.Status())
	assert.Empty(t, f.warns)
	assert.Empty(t, f.c.Links())
	assert.Nil(t, src.Relation(schema.RelationNext))
}

func TestMultiMoveClampsEachNode(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 20, 20)
	b := newItem("b", schema.StepKindNormal, 220, 20)
	f := setup(t, a, b)
	f.e.SelectAll()

	env, ok := f.e.Envelope()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 20, Y: 20, Width: 300, Height: 40}, env)

	f.e.PointerDown(geometry.Pt(150, 40), 0)
	assert.Equal(t, schema.StatusMultiMoving, f.e.Status())
	assert.Equal(t, CursorMove, f.e.Cursor())

	f.e.PointerMove(geometry.Pt(100, 0), true)
	assert.Equal(t, geometry.Pt(0, 0), f.node(0).Position())
	assert.Equal(t, geometry.Pt(200, 0), f.node(1).Position())
	env, _ = f.e.Envelope()
	assert.Equal(t, geometry.Pt(0, 0), env.Origin())

	f.e.PointerUp(geometry.Pt(100, 0))
	assert.Equal(t, schema.StatusNone, f.e.Status())
	assert.Equal(t, []any{a, b}, f.e.SelectedItems(), "selection survives the move")
}

func TestMultiMoveSnapsOnRelease(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 20, 20)
	b := newItem("b", schema.StepKindNormal, 220, 20)
	f := setup(t, a, b)
	f.e.SelectAll()

	f.drag(geometry.Pt(150, 40), geometry.Pt(163, 47), 0)
	assert.Equal(t, geometry.Pt(40, 20), f.node(0).Position())
	assert.Equal(t, geometry.Pt(240, 20), f.node(1).Position())
	env, _ := f.e.Envelope()
	assert.Equal(t, geometry.Pt(40, 20), env.Origin())
}

func TestCtrlClickAddsToSelection(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 20, 20)
	b := newItem("b", schema.StepKindNormal, 220, 20)
	f := setup(t, a, b)

	f.drag(geometry.Pt(70, 40), geometry.Pt(70, 40), 0)
	f.drag(geometry.Pt(270, 40), geometry.Pt(270, 40), ModCtrl)
	assert.Equal(t, []any{a, b}, f.e.SelectedItems())

	f.drag(geometry.Pt(600, 600), geometry.Pt(600, 600), 0)
	assert.Empty(t, f.e.SelectedItems(), "plain click on empty canvas clears the selection")
}

func TestClickSelectsLinkAndDeleteRemovesIt(t *testing.T) {
	a, b := newItem("a", schema.StepKindNormal, 0, 0), newItem("b", schema.StepKindNormal, 0, 200)
	f := setup(t, a, b)
	require.NoError(t, f.c.SetRelation(f.ids[0], schema.RelationNext, b))

	f.drag(geometry.Pt(50, 120), geometry.Pt(50, 120), 0)
	require.Len(t, f.e.SelectedLinks(), 1)

	f.e.KeyDown(KeyDelete, 0)
	assert.Equal(t, 0, f.c.LinkCount())
	assert.Nil(t, a.rel[schema.RelationNext])
	assert.Nil(t, b.rel[schema.RelationPrevious])
}

func TestCtrlASelectsAll(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 20, 20)
	b := newItem("b", schema.StepKindNormal, 220, 20)
	f := setup(t, a, b)

	f.e.KeyDown(KeyA, 0)
	assert.Empty(t, f.e.SelectedItems())
	f.e.KeyDown(KeyA, ModCtrl)
	assert.Equal(t, []any{a, b}, f.e.SelectedItems())
}

func TestEscapeCancelsMove(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 100, 100)
	f := setup(t, a)

	f.e.PointerDown(geometry.Pt(150, 120), 0)
	f.e.PointerMove(geometry.Pt(300, 300), true)
	f.e.KeyDown(KeyEscape, 0)

	assert.Equal(t, schema.StatusNone, f.e.Status())
	assert.Equal(t, geometry.Pt(100, 100), f.node(0).Position())
}

func TestEscapeCancelsDrawing(t *testing.T) {
	a, b := newItem("a", schema.StepKindNormal, 0, 0), newItem("b", schema.StepKindNormal, 0, 200)
	f := setup(t, a, b)

	f.e.PointerDown(geometry.Pt(50, 40), 0)
	f.e.PointerMove(geometry.Pt(50, 200), true)
	f.e.KeyDown(KeyEscape, 0)
	f.e.PointerUp(geometry.Pt(50, 200))

	assert.Empty(t, f.c.Links())
	assert.Empty(t, a.rel)
}

func TestScenarioZoomClamps(t *testing.T) {
	f := setup(t)
	f.e.SetScale(2.0)
	for i := 0; i < 6; i++ {
		f.e.Wheel(1)
	}
	assert.Equal(t, 3.0, f.e.Scale())

	for i := 0; i < 20; i++ {
		f.e.Wheel(-1)
	}
	assert.Equal(t, 0.2, f.e.Scale())

	f.e.SetScale(1.23)
	assert.Equal(t, 1.2, f.e.Scale())
}

func TestPointerUsesCanvasCoordinates(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 0, 0)
	f := setup(t, a)
	f.e.SetScale(2)

	f.e.PointerMove(geometry.Pt(100, 40), false)
	assert.Equal(t, geometry.Pt(50, 20), f.e.MousePosition())
	assert.Equal(t, schema.StatusNone, f.e.Status(), "move without button does nothing")

	f.e.PointerDown(geometry.Pt(100, 40), 0)
	assert.Equal(t, schema.StatusMoving, f.e.Status())
	f.e.PointerUp(geometry.Pt(100, 40))
}

func TestBatchCommitsOnce(t *testing.T) {
	f := setup(t,
		newItem("a", schema.StepKindNormal, 20, 20),
		newItem("b", schema.StepKindNormal, 220, 20),
		newItem("c", schema.StepKindNormal, 420, 20),
	)
	calls := 0
	f.e.OnSelectedItemsChanged(func([]any) { calls++ })

	f.e.SelectAll()
	assert.Equal(t, 1, calls)

	f.e.BeginBatch()
	require.NoError(t, f.e.SelectNode(f.ids[0], false))
	require.NoError(t, f.e.SelectNode(f.ids[1], false))
	assert.Equal(t, 1, calls)
	f.e.EndBatch()
	assert.Equal(t, 2, calls)

	f.e.EndBatch()
	assert.Equal(t, 3, calls, "unmatched EndBatch still commits")

	f.e.UnselectAll()
	calls = 0
	f.e.UnselectAll()
	f.e.RecomputeSelectedItems()
	assert.Equal(t, 0, calls, "empty to empty is not a change")
}

func TestRemovingSelectedNodeUpdatesSelection(t *testing.T) {
	a := newItem("a", schema.StepKindNormal, 20, 20)
	b := newItem("b", schema.StepKindNormal, 220, 20)
	f := setup(t, a, b)
	f.e.SelectAll()

	require.NoError(t, f.c.RemoveNode(f.ids[0]))
	assert.Equal(t, []any{b}, f.e.SelectedItems())
	_, ok := f.e.Envelope()
	assert.False(t, ok)
}

func TestStatusMachine(t *testing.T) {
	m := newStatusMachine()
	require.NoError(t, m.transition(schema.StatusMoving))

	err := m.transition(schema.StatusDrawing)
	var ee *schema.EditorError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, schema.ErrCodeInvalidTransition, ee.Code)
	assert.Equal(t, schema.StatusMoving, m.current)

	require.NoError(t, m.transition(schema.StatusNone))
}

func TestTransitionHooks(t *testing.T) {
	f := setup(t, newItem("a", schema.StepKindNormal, 0, 0))

	var seen []schema.EditorStatus
	f.e.OnTransition(schema.StatusNone, schema.StatusMoving, func(_, to schema.EditorStatus) error {
		seen = append(seen, to)
		return nil
	})
	f.e.OnBeforeTransition(schema.StatusNone, schema.StatusSelecting, func(_, _ schema.EditorStatus) error {
		return errors.New("marquee disabled")
	})

	f.e.PointerDown(geometry.Pt(50, 20), 0)
	f.e.PointerUp(geometry.Pt(50, 20))
	assert.Equal(t, []schema.EditorStatus{schema.StatusMoving}, seen)

	f.e.PointerDown(geometry.Pt(600, 600), 0)
	assert.Equal(t, schema.StatusNone, f.e.Status(), "cancelled transition forces None")
	f.e.PointerUp(geometry.Pt(600, 600))
}

func TestEditorsAreIndependent(t *testing.T) {
	f1 := setup(t, newItem("a", schema.StepKindNormal, 0, 0))
	f2 := setup(t, newItem("b", schema.StepKindNormal, 0, 0))

	f1.e.PointerDown(geometry.Pt(50, 40), 0)
	assert.Equal(t, schema.StatusDrawing, f1.e.Status())
	assert.Equal(t, schema.StatusNone, f2.e.Status())
	assert.NotEqual(t, New(canvas.New()).ID(), New(canvas.New()).ID())
}

func TestEventsPublished(t *testing.T) {
	hub := events.NewMemoryHub(256)
	ctx := context.Background()
	ch, cancel, err := hub.Subscribe(ctx, events.Filter{
		EditorID:   "ed-hub",
		EventTypes: []string{schema.EventLinkCreated, schema.EventConnectionRejected},
	})
	require.NoError(t, err)
	defer cancel()

	c := canvas.New()
	e := New(c, WithID("ed-hub"), WithHub(hub), WithNotifier(NotifierFunc(func(string) {})))
	a, b := newItem("a", schema.StepKindNormal, 0, 0), newItem("b", schema.StepKindNormal, 0, 200)
	c.AddNode(a, canvas.SpecFor(a))
	c.AddNode(b, canvas.SpecFor(b))
	c.Flush()

	e.PointerDown(geometry.Pt(50, 40), 0)
	e.PointerUp(geometry.Pt(50, 200))
	e.PointerDown(geometry.Pt(50, 0), 0)
	e.PointerUp(geometry.Pt(50, 240))

	var got []string
	for len(got) < 2 {
		select {
		case ev := <-ch:
			assert.Equal(t, "ed-hub", ev.EditorID)
			got = append(got, ev.EventType)
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	assert.Equal(t, []string{schema.EventLinkCreated, schema.EventConnectionRejected}, got)
}
