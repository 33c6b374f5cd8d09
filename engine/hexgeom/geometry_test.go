package hexgeom

import "testing"

func TestStepReverseRoundTrip(t *testing.T) {
	for x := -3; x < 4; x++ {
		for y := -3; y < 4; y++ {
			h := Hex{x, y}
			for d := Dir(0); d < DirCount; d++ {
				n := h.Step(d)
				if back := n.Step(d.Reverse()); back != h {
					t.Fatalf("%v step %d then back = %v", h, d, back)
				}
				if Distance(h, n) != 1 {
					t.Fatalf("%v and %v should be adjacent", h, n)
				}
				if got := DirOf(h, n); got != d {
					t.Errorf("DirOf(%v,%v) = %d, want %d", h, n, got, d)
				}
			}
		}
	}
}

func TestAxialRoundTrip(t *testing.T) {
	for x := -5; x < 6; x++ {
		for y := -5; y < 6; y++ {
			h := Hex{x, y}
			if got := FromAxial(h.Axial()); got != h {
				t.Fatalf("FromAxial(%v.Axial()) = %v", h, got)
			}
		}
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b Hex
		want int
	}{
		{Hex{0, 0}, Hex{0, 0}, 0},
		{Hex{0, 0}, Hex{0, 5}, 5},
		{Hex{0, 0}, Hex{4, 0}, 4},
		{Hex{5, 5}, Hex{8, 5}, 3},
		{Hex{5, 5}, Hex{5, 9}, 4},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%v,%v) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := Distance(c.b, c.a); got != c.want {
			t.Errorf("Distance(%v,%v) not symmetric: %d", c.b, c.a, got)
		}
	}
}

func TestRingSizes(t *testing.T) {
	c := Hex{10, 10}
	seen := map[Hex]bool{}
	for r := 1; r <= 4; r++ {
		ring := Ring(c, r)
		if len(ring) != 6*r {
			t.Fatalf("ring %d has %d hexes", r, len(ring))
		}
		for _, h := range ring {
			if Distance(c, h) != r {
				t.Fatalf("ring %d contains %v at distance %d", r, h, Distance(c, h))
			}
			if seen[h] {
				t.Fatalf("hex %v repeated", h)
			}
			seen[h] = true
		}
	}
}

func TestLineStraight(t *testing.T) {
	line := Line(Hex{0, 0}, Hex{0, 5}, 0, 0)
	if len(line) != 5 {
		t.Fatalf("len = %d, want 5", len(line))
	}
	for i, h := range line {
		if h != (Hex{0, i + 1}) {
			t.Errorf("line[%d] = %v", i, h)
		}
	}
}

func TestLineNeighborsAndExtension(t *testing.T) {
	from := Hex{3, 4}
	line := Line(from, Hex{9, 7}, 12, 0)
	if len(line) != 12 {
		t.Fatalf("len = %d, want 12", len(line))
	}
	prev := from
	for _, h := range line {
		if Distance(prev, h) != 1 {
			t.Fatalf("%v -> %v not adjacent", prev, h)
		}
		prev = h
	}
	if Distance(from, line[len(line)-1]) != 12 {
		t.Errorf("end %v not at distance 12", line[len(line)-1])
	}
}

func TestLineRotatedByDirection(t *testing.T) {
	from := Hex{10, 10}
	to := from
	for i := 0; i < 4; i++ {
		to = to.Step(DirRight)
	}
	line := Line(from, to, 4, 60)
	want := from
	for i := 0; i < 4; i++ {
		want = want.Step(DirDownRight)
	}
	if got := line[len(line)-1]; got != want {
		t.Errorf("rotated end = %v, want %v", got, want)
	}
}

func TestHexOffsetDirections(t *testing.T) {
	want := [DirCount][2]int{
		{16, -12}, {32, 0}, {16, 12}, {-16, 12}, {-32, 0}, {-16, -12},
	}
	for _, from := range []Hex{{4, 4}, {5, 4}} {
		for d := Dir(0); d < DirCount; d++ {
			x, y := HexOffset(from, from.Step(d), DefaultHexWidth, DefaultHexLineHeight)
			if x != want[d][0] || y != want[d][1] {
				t.Errorf("from %v dir %d offset = (%d,%d), want %v", from, d, x, y, want[d])
			}
		}
	}
}

func TestDirection(t *testing.T) {
	from := Hex{6, 6}
	for d := Dir(0); d < DirCount; d++ {
		to := from.Step(d).Step(d).Step(d)
		if got := Direction(from, to); got != d {
			t.Errorf("Direction toward dir %d = %d", d, got)
		}
	}
	if Direction(from, from) != DirNone {
		t.Error("Direction to self should be DirNone")
	}
}
