package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/brensch/gridsnakes/grid"
	"github.com/google/go-cmp/cmp"
)

// dumpWorld is a test helper to visualize the board.
func dumpWorld(w *World) string {
	var sb strings.Builder
	for r := 0; r < w.Rows(); r++ {
		for c := 0; c < w.Cols(); c++ {
			p := grid.Point{Row: r, Col: c}
			cell := w.Cell(p)
			switch cell.Kind {
			case KindEmpty:
				sb.WriteByte('.')
			case KindFood:
				sb.WriteByte('*')
			case KindStone:
				sb.WriteByte('#')
			case KindSnake:
				sym := byte('a' + cell.Owner)
				if w.IsHead(cell.Owner, p) {
					sym -= 32
				}
				sb.WriteByte(sym)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func logAdvance(t *testing.T, label string, before string, dirs []Orientation, w *World, events []GameEvent) {
	t.Helper()
	t.Logf("%s\n  BEFORE (dirs=%v):\n%s  AFTER (events=%v):\n%s", label, dirs, before, events, dumpWorld(w))
}

// checkOccupancy verifies that every snake's ends sit on its own cells and
// that it owns exactly Length cells.
func checkOccupancy(t *testing.T, w *World) {
	t.Helper()
	owned := make([]int, w.PlayerCount())
	for r := 0; r < w.Rows(); r++ {
		for c := 0; c < w.Cols(); c++ {
			if cell := w.Cell(grid.Point{Row: r, Col: c}); cell.IsSnake() {
				owned[cell.Owner]++
			}
		}
	}
	for i, s := range w.Snakes() {
		if h := w.Cell(s.Head); !h.IsSnake() || h.Owner != i {
			t.Fatalf("snake %d head %v holds %v\n%s", i, s.Head, h, dumpWorld(w))
		}
		if tl := w.Cell(s.Tail); !tl.IsSnake() || tl.Owner != i {
			t.Fatalf("snake %d tail %v holds %v\n%s", i, s.Tail, tl, dumpWorld(w))
		}
		if owned[i] != s.Length {
			t.Fatalf("snake %d owns %d cells, length=%d\n%s", i, owned[i], s.Length, dumpWorld(w))
		}
	}
}

func mustAddSnake(t *testing.T, w *World, head grid.Point, facing Orientation) {
	t.Helper()
	if err := w.AddSnake(head, facing); err != nil {
		t.Fatalf("AddSnake(%v, %v): %v", head, facing, err)
	}
}

func pt(r, c int) grid.Point { return grid.Point{Row: r, Col: c} }

func TestAddSnake_PlacesHeadAndTail(t *testing.T) {
	w := NewWorld(5, 5)
	mustAddSnake(t, w, pt(1, 1), Down)

	s := w.Snake(0)
	if s.Head != pt(1, 1) || s.Tail != pt(0, 1) {
		t.Fatalf("snake=%v want head=(1,1) tail=(0,1)", s)
	}
	if s.Length != 2 || s.PendingGrowth != 0 {
		t.Fatalf("length=%d pending=%d want=2,0", s.Length, s.PendingGrowth)
	}
	if got, want := w.Cell(pt(1, 1)), Segment(0, Down); got != want {
		t.Fatalf("head cell=%v want=%v", got, want)
	}
	if got, want := w.Cell(pt(0, 1)), Segment(0, Down); got != want {
		t.Fatalf("tail cell=%v want=%v", got, want)
	}
	checkOccupancy(t, w)
}

func TestAddSnake_Errors(t *testing.T) {
	w := NewWorld(5, 5)
	mustAddSnake(t, w, pt(2, 2), Right)

	cases := []struct {
		name   string
		head   grid.Point
		facing Orientation
		want   error
	}{
		{"tail above top", pt(0, 3), Down, ErrOutOfBounds},
		{"tail below bottom", pt(4, 3), Up, ErrOutOfBounds},
		{"tail past right", pt(3, 4), Left, ErrOutOfBounds},
		{"tail past left", pt(3, 0), Right, ErrOutOfBounds},
		{"head off grid", pt(5, 0), Down, ErrOutOfBounds},
		{"head occupied", pt(2, 2), Down, ErrOccupied},
		{"tail occupied", pt(3, 1), Down, ErrOccupied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := w.AddSnake(tc.head, tc.facing)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want=%v", err, tc.want)
			}
			if w.PlayerCount() != 1 {
				t.Fatalf("players=%d want=1", w.PlayerCount())
			}
		})
	}
}

func TestAdvance_NormalMove(t *testing.T) {
	w := NewWorld(5, 5)
	mustAddSnake(t, w, pt(2, 2), Down)

	before := dumpWorld(w)
	dirs := []Orientation{Down}
	events := w.Advance(dirs)
	logAdvance(t, "normal move", before, dirs, w, events)

	if len(events) != 0 {
		t.Fatalf("events=%v want none", events)
	}
	s := w.Snake(0)
	if s.Head != pt(3, 2) || s.Tail != pt(2, 2) || s.Length != 2 {
		t.Fatalf("snake=%v length=%d want head=(3,2) tail=(2,2) length=2", s, s.Length)
	}
	if !w.Cell(pt(1, 2)).IsEmpty() {
		t.Fatalf("old tail cell=%v want empty", w.Cell(pt(1, 2)))
	}
	checkOccupancy(t, w)
}

func TestAdvance_TurnKeepsBodyFacing(t *testing.T) {
	w := NewWorld(5, 5)
	mustAddSnake(t, w, pt(2, 2), Down)
	w.Advance([]Orientation{Down})

	before := dumpWorld(w)
	dirs := []Orientation{Right}
	events := w.Advance(dirs)
	logAdvance(t, "turn right", before, dirs, w, events)

	s := w.Snake(0)
	if s.Head != pt(3, 3) || s.Tail != pt(3, 2) {
		t.Fatalf("snake=%v want head=(3,3) tail=(3,2)", s)
	}
	if got := w.SnakeDirection(pt(3, 2)); got != Right {
		t.Fatalf("tail facing=%v want=Right", got)
	}
	if !w.Cell(pt(2, 2)).IsEmpty() {
		t.Fatalf("vacated cell=%v want empty", w.Cell(pt(2, 2)))
	}
	checkOccupancy(t, w)
}

func TestAdvance_ReversalIgnored(t *testing.T) {
	w := NewWorld(6, 6)
	mustAddSnake(t, w, pt(2, 2), Down)

	events := w.Advance([]Orientation{Up})
	if len(events) != 0 {
		t.Fatalf("events=%v want none", events)
	}
	if got := w.Snake(0).Head; got != pt(3, 2) {
		t.Fatalf("head=%v want=(3,2) (kept moving down)", got)
	}
	if got := w.SnakeDirection(w.Snake(0).Head); got != Down {
		t.Fatalf("facing=%v want=Down", got)
	}
}

func TestAdvance_WrapAround(t *testing.T) {
	w := NewWorld(10, 10)
	mustAddSnake(t, w, pt(5, 9), Right)

	events := w.Advance([]Orientation{Right})
	if len(events) != 0 {
		t.Fatalf("events=%v want none", events)
	}
	s := w.Snake(0)
	if s.Head != pt(5, 0) || s.Tail != pt(5, 9) {
		t.Fatalf("snake=%v want head=(5,0) tail=(5,9)", s)
	}
	checkOccupancy(t, w)
}

func TestAdvance_WallCollision(t *testing.T) {
	w := NewWorld(10, 10)
	w.WallCollision = true
	mustAddSnake(t, w, pt(5, 9), Right)
	before := dumpWorld(w)

	events := w.Advance([]Orientation{Right})
	want := []GameEvent{Collision(0, pt(5, 10))}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if got := dumpWorld(w); got != before {
		t.Fatalf("world changed on collision:\n%s", got)
	}
	if s := w.Snake(0); s.Head != pt(5, 9) || s.Tail != pt(5, 8) {
		t.Fatalf("snake=%v want unchanged", s)
	}
}

func TestAdvance_FoodGrowth(t *testing.T) {
	w := NewWorld(5, 5)
	mustAddSnake(t, w, pt(2, 2), Down)
	if err := w.PlaceSnack(pt(3, 2), 2); err != nil {
		t.Fatalf("PlaceSnack: %v", err)
	}
	if w.AvailableSnacks() != 1 {
		t.Fatalf("snacks=%d want=1", w.AvailableSnacks())
	}

	events := w.Advance([]Orientation{Down})
	if diff := cmp.Diff([]GameEvent{FoodConsumed(0, 2)}, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if w.AvailableSnacks() != 0 {
		t.Fatalf("snacks=%d want=0", w.AvailableSnacks())
	}

	// Two ticks of growth: the tail stays put, length goes up by one each.
	wantLengths := []int{3, 4, 4}
	wantTails := []grid.Point{pt(1, 2), pt(1, 2), pt(2, 2)}
	for i := range wantLengths {
		if i > 0 {
			w.Advance([]Orientation{Down})
		}
		s := w.Snake(0)
		if s.Length != wantLengths[i] || s.Tail != wantTails[i] {
			t.Fatalf("tick %d: length=%d tail=%v want length=%d tail=%v\n%s", i, s.Length, s.Tail, wantLengths[i], wantTails[i], dumpWorld(w))
		}
		checkOccupancy(t, w)
	}
	if w.Snake(0).PendingGrowth != 0 {
		t.Fatalf("pending=%d want=0", w.Snake(0).PendingGrowth)
	}
}

func TestAdvance_CrossCollisionIsSymmetric(t *testing.T) {
	w := NewWorld(5, 5)
	mustAddSnake(t, w, pt(2, 2), Right) // snake 0, tail (2,1)
	mustAddSnake(t, w, pt(1, 3), Down)  // snake 1, tail (0,3)

	before := dumpWorld(w)
	dirs := []Orientation{Right, Down}
	events := w.Advance(dirs)
	logAdvance(t, "cross collision", before, dirs, w, events)

	want := []GameEvent{
		Collision(1, pt(2, 3)),
		Collision(0, pt(2, 2)),
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	// Snake 0 already moved; snake 1 did not.
	if got := w.Snake(0).Head; got != pt(2, 3) {
		t.Fatalf("snake 0 head=%v want=(2,3)", got)
	}
	if got := w.Snake(1).Head; got != pt(1, 3) {
		t.Fatalf("snake 1 head=%v want=(1,3)", got)
	}
	checkOccupancy(t, w)
}

func TestAdvance_HeadOfUnmovedSnakeOnlyHurtsMover(t *testing.T) {
	w := NewWorld(5, 5)
	mustAddSnake(t, w, pt(2, 2), Right) // snake 0
	mustAddSnake(t, w, pt(2, 3), Up)    // snake 1, tail (3,3)

	events := w.Advance([]Orientation{Right, Up})
	want := []GameEvent{Collision(0, pt(2, 3))}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if got := w.Snake(1).Head; got != pt(1, 3) {
		t.Fatalf("snake 1 head=%v want=(1,3)", got)
	}
	checkOccupancy(t, w)
}

func TestAdvance_StoneCollision(t *testing.T) {
	w := NewWorld(5, 5)
	mustAddSnake(t, w, pt(2, 2), Down)
	if err := w.PlaceStone(pt(3, 2)); err != nil {
		t.Fatalf("PlaceStone: %v", err)
	}

	events := w.Advance([]Orientation{Down})
	if diff := cmp.Diff([]GameEvent{Collision(0, pt(3, 2))}, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if got := w.Snake(0).Head; got != pt(2, 2) {
		t.Fatalf("head=%v want=(2,2)", got)
	}
	if w.Cell(pt(3, 2)).Kind != KindStone {
		t.Fatalf("stone overwritten: %v", w.Cell(pt(3, 2)))
	}
}

func TestAdvance_WrongDirectionCountPanics(t *testing.T) {
	w := NewWorld(5, 5)
	mustAddSnake(t, w, pt(2, 2), Down)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	w.Advance(nil)
}

func TestSnakeDirection_PanicsOnNonSnakeCell(t *testing.T) {
	w := NewWorld(3, 3)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	w.SnakeDirection(pt(1, 1))
}

func TestHeadBodyTail(t *testing.T) {
	w := NewWorld(6, 6)
	mustAddSnake(t, w, pt(1, 1), Down)
	if err := w.PlaceSnack(pt(2, 1), 1); err != nil {
		t.Fatalf("PlaceSnack: %v", err)
	}
	w.Advance([]Orientation{Down})

	// Body is now (0,1) tail, (1,1) body, (2,1) head.
	if !w.IsHead(0, pt(2, 1)) || w.IsBody(0, pt(2, 1)) {
		t.Fatalf("(2,1) should be head only")
	}
	if !w.IsBody(0, pt(1, 1)) {
		t.Fatalf("(1,1) should be body\n%s", dumpWorld(w))
	}
	if !w.IsTail(0, pt(0, 1)) || w.IsBody(0, pt(0, 1)) {
		t.Fatalf("(0,1) should be tail only")
	}
	if w.IsBody(0, pt(4, 4)) {
		t.Fatalf("empty cell reported as body")
	}
}

func TestPlaceSnack_Occupied(t *testing.T) {
	w := NewWorld(4, 4)
	mustAddSnake(t, w, pt(1, 1), Down)

	if err := w.PlaceSnack(pt(1, 1), 1); !errors.Is(err, ErrOccupied) {
		t.Fatalf("err=%v want=ErrOccupied", err)
	}
	if err := w.PlaceSnack(pt(3, 3), 1); err != nil {
		t.Fatalf("PlaceSnack: %v", err)
	}
	if err := w.PlaceSnack(pt(3, 3), 1); !errors.Is(err, ErrOccupied) {
		t.Fatalf("err=%v want=ErrOccupied", err)
	}
	if err := w.PlaceSnack(pt(4, 0), 1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("err=%v want=ErrOutOfBounds", err)
	}
	if w.AvailableSnacks() != 1 {
		t.Fatalf("snacks=%d want=1", w.AvailableSnacks())
	}
}

func TestPlaceSnackRandomly_FullBoard(t *testing.T) {
	w := NewWorld(2, 1)
	mustAddSnake(t, w, pt(1, 0), Down)

	if err := w.PlaceSnackRandomly(1); !errors.Is(err, ErrNoSpace) {
		t.Fatalf("err=%v want=ErrNoSpace", err)
	}
	if w.AvailableSnacks() != 0 {
		t.Fatalf("snacks=%d want=0", w.AvailableSnacks())
	}
}

func TestPlaceSnackRandomly_DeterministicWithoutRand(t *testing.T) {
	w := NewWorld(8, 8)
	mustAddSnake(t, w, pt(3, 3), Left)
	a, b := w.Clone(), w.Clone()

	if err := a.PlaceSnackRandomly(2); err != nil {
		t.Fatalf("PlaceSnackRandomly: %v", err)
	}
	if err := b.PlaceSnackRandomly(2); err != nil {
		t.Fatalf("PlaceSnackRandomly: %v", err)
	}
	if dumpWorld(a) != dumpWorld(b) {
		t.Fatalf("placement differs:\n%s\nvs\n%s", dumpWorld(a), dumpWorld(b))
	}
}

func TestPlaceStonesRandomly(t *testing.T) {
	w := NewWorld(6, 6)
	w.SetRand(rand.New(rand.NewSource(7)))
	mustAddSnake(t, w, pt(1, 1), Down)

	placed := w.PlaceStonesRandomly(5)
	if placed != 5 {
		t.Fatalf("placed=%d want=5", placed)
	}
	stones := 0
	for r := 0; r < w.Rows(); r++ {
		for c := 0; c < w.Cols(); c++ {
			if w.Cell(pt(r, c)).Kind == KindStone {
				stones++
			}
		}
	}
	if stones != 5 {
		t.Fatalf("stones on board=%d want=5", stones)
	}
	if w.Cell(pt(2, 1)).Kind == KindStone {
		t.Fatalf("stone placed in front of head\n%s", dumpWorld(w))
	}
}

func TestClone_Isolated(t *testing.T) {
	w := NewWorld(6, 6)
	mustAddSnake(t, w, pt(2, 2), Down)
	before := dumpWorld(w)

	c := w.Clone()
	if err := c.PlaceSnack(pt(0, 0), 3); err != nil {
		t.Fatalf("PlaceSnack: %v", err)
	}
	c.Advance([]Orientation{Right})

	if got := dumpWorld(w); got != before {
		t.Fatalf("origin changed through clone:\n%s", got)
	}
	if w.Snake(0) == c.Snake(0) {
		t.Fatalf("clone did not advance")
	}
	if w.AvailableSnacks() != 0 {
		t.Fatalf("origin snacks=%d want=0", w.AvailableSnacks())
	}
}

func TestAdvance_RandomWalkKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	w := NewWorld(8, 8)
	w.SetRand(rand.New(rand.NewSource(1)))
	mustAddSnake(t, w, pt(1, 1), Down)
	mustAddSnake(t, w, pt(5, 5), Up)

	for tick := 0; tick < 500; tick++ {
		if tick%5 == 0 && w.AvailableSnacks() < 3 {
			_ = w.PlaceSnackRandomly(tick%3 + 1)
		}
		dirs := []Orientation{Orientations[rng.Intn(4)], Orientations[rng.Intn(4)]}
		w.Advance(dirs)
		checkOccupancy(t, w)
	}
}
