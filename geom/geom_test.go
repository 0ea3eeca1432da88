package geom

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestClipLineFullyInside(tst *testing.T) {
	chk.PrintTitle("geom: ClipLine extends the line through two interior points to the rectangle's edges")
	r := Rect{XMin: -10, XMax: 10, YMin: -10, YMax: 10}
	seg, ok := r.ClipLine(Point{X: -1, Y: 0}, Point{X: 1, Y: 0})
	if !ok {
		tst.Fatal("expected the clip to succeed")
	}
	chk.Scalar(tst, "source.X", 1e-12, seg.Source.X, -10)
	chk.Scalar(tst, "target.X", 1e-12, seg.Target.X, 10)
}

func TestClipLineMissesRect(tst *testing.T) {
	chk.PrintTitle("geom: ClipLine reports a miss for a line outside the rectangle")
	r := Rect{XMin: -1, XMax: 1, YMin: -1, YMax: 1}
	_, ok := r.ClipLine(Point{X: -5, Y: 10}, Point{X: 5, Y: 10})
	if ok {
		tst.Fatal("expected the clip to report a miss")
	}
}

func TestOverlapsDetectsSeparation(tst *testing.T) {
	chk.PrintTitle("geom: Overlaps is false for disjoint rectangles")
	a := Rect{XMin: 0, XMax: 1, YMin: 0, YMax: 1}
	b := Rect{XMin: 2, XMax: 3, YMin: 2, YMax: 3}
	if a.Overlaps(b) {
		tst.Fatal("expected disjoint rectangles not to overlap")
	}
	c := Rect{XMin: 0.5, XMax: 1.5, YMin: 0.5, YMax: 1.5}
	if !a.Overlaps(c) {
		tst.Fatal("expected overlapping rectangles to report true")
	}
}

func TestLerpEndpoints(tst *testing.T) {
	chk.PrintTitle("geom: Lerp reproduces both segment endpoints at t=0,1")
	s := Segment{Source: Point{X: 0, Y: 0}, Target: Point{X: 4, Y: 2}}
	chk.Scalar(tst, "lerp(0).X", 1e-12, s.Lerp(0).X, 0)
	chk.Scalar(tst, "lerp(1).X", 1e-12, s.Lerp(1).X, 4)
}
