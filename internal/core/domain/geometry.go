// Package domain contains the core domain model: layouts, cells, ports and
// the canonical parameter representation used for caching and naming.
package domain

import "math"

// Point is a position in database units.
type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// DPoint is a position in micrometers.
type DPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned rectangle in database units. An empty box is
// represented by Left > Right.
type Box struct {
	Left   int64 `json:"left"`
	Bottom int64 `json:"bottom"`
	Right  int64 `json:"right"`
	Top    int64 `json:"top"`
}

// EmptyBox returns a box that unions as the identity.
func EmptyBox() Box {
	return Box{Left: math.MaxInt64, Bottom: math.MaxInt64, Right: math.MinInt64, Top: math.MinInt64}
}

// Empty reports whether the box contains no area.
func (b Box) Empty() bool {
	return b.Left > b.Right || b.Bottom > b.Top
}

// Width returns the horizontal extent of the box.
func (b Box) Width() int64 {
	if b.Empty() {
		return 0
	}
	return b.Right - b.Left
}

// Height returns the vertical extent of the box.
func (b Box) Height() int64 {
	if b.Empty() {
		return 0
	}
	return b.Top - b.Bottom
}

// Union returns the smallest box covering both boxes.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Box{
		Left:   min(b.Left, o.Left),
		Bottom: min(b.Bottom, o.Bottom),
		Right:  max(b.Right, o.Right),
		Top:    max(b.Top, o.Top),
	}
}

// DBox is an axis-aligned rectangle in micrometers.
type DBox struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
}

// Width returns the horizontal extent of the box.
func (b DBox) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent of the box.
func (b DBox) Height() float64 { return b.Top - b.Bottom }

// Trans is an orthogonal transformation in database units: a rotation by a
// multiple of 90 degrees, an optional mirror around the x axis (applied
// before the rotation), and a displacement.
type Trans struct {
	// Rot counts counterclockwise 90 degree rotations, 0-3.
	Rot    int   `json:"rot"`
	Mirror bool  `json:"mirror,omitempty"`
	Disp   Point `json:"disp"`
}

// Apply transforms a point.
func (t Trans) Apply(p Point) Point {
	if t.Mirror {
		p.Y = -p.Y
	}
	for range t.normRot() {
		p.X, p.Y = -p.Y, p.X
	}
	return Point{X: p.X + t.Disp.X, Y: p.Y + t.Disp.Y}
}

// ApplyBox transforms a box. Orthogonal transforms map boxes to boxes.
func (t Trans) ApplyBox(b Box) Box {
	if b.Empty() {
		return b
	}
	p1 := t.Apply(Point{X: b.Left, Y: b.Bottom})
	p2 := t.Apply(Point{X: b.Right, Y: b.Top})
	return Box{
		Left:   min(p1.X, p2.X),
		Bottom: min(p1.Y, p2.Y),
		Right:  max(p1.X, p2.X),
		Top:    max(p1.Y, p2.Y),
	}
}

// Compose returns the transformation equivalent to applying o first and
// then t.
func (t Trans) Compose(o Trans) Trans {
	rot := t.normRot()
	if t.Mirror {
		// Mirroring flips the direction of the inner rotation.
		o.Rot = -o.Rot
	}
	return Trans{
		Rot:    (rot + o.normRot() + 4) % 4,
		Mirror: t.Mirror != o.Mirror,
		Disp:   t.Apply(o.Disp),
	}
}

func (t Trans) normRot() int {
	r := t.Rot % 4
	if r < 0 {
		r += 4
	}
	return r
}

// DCplxTrans is a complex transformation in micrometers: arbitrary rotation
// angle, magnification, optional mirror and a floating point displacement.
type DCplxTrans struct {
	Mag    float64 `json:"mag"`
	Rot    float64 `json:"rot"` // degrees, counterclockwise
	Mirror bool    `json:"mirror,omitempty"`
	Disp   DPoint  `json:"disp"`
}

// Apply transforms a point.
func (t DCplxTrans) Apply(p DPoint) DPoint {
	if t.Mirror {
		p.Y = -p.Y
	}
	mag := t.Mag
	if mag == 0 {
		mag = 1
	}
	rad := t.Rot * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return DPoint{
		X: mag*(cos*p.X-sin*p.Y) + t.Disp.X,
		Y: mag*(sin*p.X+cos*p.Y) + t.Disp.Y,
	}
}

// IsOrthogonal reports whether the rotation is a multiple of 90 degrees and
// the magnification is one.
func (t DCplxTrans) IsOrthogonal() bool {
	if t.Mag != 0 && t.Mag != 1 {
		return false
	}
	rot := math.Mod(t.Rot, 90)
	return rot == 0
}

// Edge is a line segment in database units.
type Edge struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// DEdge is a line segment in micrometers.
type DEdge struct {
	P1 DPoint `json:"p1"`
	P2 DPoint `json:"p2"`
}

// Text is a label anchored by an orthogonal transformation.
type Text struct {
	Str   string `json:"str"`
	Trans Trans  `json:"trans"`
}

// DText is a label anchored by a complex transformation.
type DText struct {
	Str   string     `json:"str"`
	Trans DCplxTrans `json:"trans"`
}

// Shape is a tagged union of the shape types a layer can hold. Exactly one
// field is set.
type Shape struct {
	Box   *Box   `json:"box,omitempty"`
	Edge  *Edge  `json:"edge,omitempty"`
	DEdge *DEdge `json:"dedge,omitempty"`
	Text  *Text  `json:"text,omitempty"`
	DText *DText `json:"dtext,omitempty"`
}

// BoxShape wraps a box as a shape.
func BoxShape(b Box) Shape { return Shape{Box: &b} }

// BBox returns the bounding box of the shape in database units. The dbu
// scale converts micrometer shapes onto the grid.
func (s Shape) BBox(dbu float64) Box {
	switch {
	case s.Box != nil:
		return *s.Box
	case s.Edge != nil:
		return Box{
			Left:   min(s.Edge.P1.X, s.Edge.P2.X),
			Bottom: min(s.Edge.P1.Y, s.Edge.P2.Y),
			Right:  max(s.Edge.P1.X, s.Edge.P2.X),
			Top:    max(s.Edge.P1.Y, s.Edge.P2.Y),
		}
	case s.DEdge != nil:
		return Box{
			Left:   snap(min(s.DEdge.P1.X, s.DEdge.P2.X), dbu),
			Bottom: snap(min(s.DEdge.P1.Y, s.DEdge.P2.Y), dbu),
			Right:  snap(max(s.DEdge.P1.X, s.DEdge.P2.X), dbu),
			Top:    snap(max(s.DEdge.P1.Y, s.DEdge.P2.Y), dbu),
		}
	case s.Text != nil:
		p := s.Text.Trans.Disp
		return Box{Left: p.X, Bottom: p.Y, Right: p.X, Top: p.Y}
	case s.DText != nil:
		p := s.DText.Trans.Disp
		x, y := snap(p.X, dbu), snap(p.Y, dbu)
		return Box{Left: x, Bottom: y, Right: x, Top: y}
	}
	return EmptyBox()
}

// Transform returns the shape moved by an orthogonal transformation.
func (s Shape) Transform(t Trans, dbu float64) Shape {
	switch {
	case s.Box != nil:
		b := t.ApplyBox(*s.Box)
		return Shape{Box: &b}
	case s.Edge != nil:
		e := Edge{P1: t.Apply(s.Edge.P1), P2: t.Apply(s.Edge.P2)}
		return Shape{Edge: &e}
	case s.DEdge != nil:
		d := toDCplx(t, dbu)
		e := DEdge{P1: d.Apply(s.DEdge.P1), P2: d.Apply(s.DEdge.P2)}
		return Shape{DEdge: &e}
	case s.Text != nil:
		txt := Text{Str: s.Text.Str, Trans: t.Compose(s.Text.Trans)}
		return Shape{Text: &txt}
	case s.DText != nil:
		d := toDCplx(t, dbu)
		txt := DText{Str: s.DText.Str, Trans: composeDCplx(d, s.DText.Trans)}
		return Shape{DText: &txt}
	}
	return s
}

// TransformComplex returns the shape moved by a complex transformation.
// Grid shapes are snapped back onto the grid afterwards.
func (s Shape) TransformComplex(t DCplxTrans, dbu float64) Shape {
	switch {
	case s.Box != nil:
		p1 := t.Apply(DPoint{X: float64(s.Box.Left) * dbu, Y: float64(s.Box.Bottom) * dbu})
		p2 := t.Apply(DPoint{X: float64(s.Box.Right) * dbu, Y: float64(s.Box.Top) * dbu})
		b := Box{
			Left:   snap(math.Min(p1.X, p2.X), dbu),
			Bottom: snap(math.Min(p1.Y, p2.Y), dbu),
			Right:  snap(math.Max(p1.X, p2.X), dbu),
			Top:    snap(math.Max(p1.Y, p2.Y), dbu),
		}
		return Shape{Box: &b}
	case s.Edge != nil:
		p1 := t.Apply(DPoint{X: float64(s.Edge.P1.X) * dbu, Y: float64(s.Edge.P1.Y) * dbu})
		p2 := t.Apply(DPoint{X: float64(s.Edge.P2.X) * dbu, Y: float64(s.Edge.P2.Y) * dbu})
		e := DEdge{P1: p1, P2: p2}
		return Shape{DEdge: &e}
	case s.DEdge != nil:
		e := DEdge{P1: t.Apply(s.DEdge.P1), P2: t.Apply(s.DEdge.P2)}
		return Shape{DEdge: &e}
	case s.Text != nil:
		txt := DText{Str: s.Text.Str, Trans: composeDCplx(t, toDCplx(s.Text.Trans, dbu))}
		return Shape{DText: &txt}
	case s.DText != nil:
		txt := DText{Str: s.DText.Str, Trans: composeDCplx(t, s.DText.Trans)}
		return Shape{DText: &txt}
	}
	return s
}

func toDCplx(t Trans, dbu float64) DCplxTrans {
	return DCplxTrans{
		Mag:    1,
		Rot:    float64(t.normRot()) * 90,
		Mirror: t.Mirror,
		Disp:   DPoint{X: float64(t.Disp.X) * dbu, Y: float64(t.Disp.Y) * dbu},
	}
}

func composeDCplx(t, o DCplxTrans) DCplxTrans {
	tm, om := t.Mag, o.Mag
	if tm == 0 {
		tm = 1
	}
	if om == 0 {
		om = 1
	}
	rot := o.Rot
	if t.Mirror {
		rot = -rot
	}
	return DCplxTrans{
		Mag:    tm * om,
		Rot:    t.Rot + rot,
		Mirror: t.Mirror != o.Mirror,
		Disp:   t.Apply(o.Disp),
	}
}

func snap(um, dbu float64) int64 {
	return int64(math.Round(um / dbu))
}
