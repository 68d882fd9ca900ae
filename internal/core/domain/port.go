package domain

// Port is a named connection point on a cell. Its placement is either a
// grid transformation (Trans, database units) or a sub-grid complex
// transformation (DCplxTrans, micrometers); exactly one of the two is set,
// mirroring how the port was defined.
type Port struct {
	Name  string `json:"name"`
	Width int64  `json:"width"` // dbu
	Layer int    `json:"layer"` // layout layer index
	Type  string `json:"type,omitempty"`

	Trans      *Trans      `json:"trans,omitempty"`
	DCplxTrans *DCplxTrans `json:"dcplx_trans,omitempty"`
}

// OnGrid reports whether the port was defined with a grid placement.
func (p *Port) OnGrid() bool { return p.Trans != nil }

// Position returns the port position in database units, snapping sub-grid
// placements onto the grid.
func (p *Port) Position(dbu float64) Point {
	if p.Trans != nil {
		return p.Trans.Disp
	}
	if p.DCplxTrans != nil {
		return Point{
			X: snap(p.DCplxTrans.Disp.X, dbu),
			Y: snap(p.DCplxTrans.Disp.Y, dbu),
		}
	}
	return Point{}
}

// DPosition returns the port position in micrometers.
func (p *Port) DPosition(dbu float64) DPoint {
	if p.DCplxTrans != nil {
		return p.DCplxTrans.Disp
	}
	if p.Trans != nil {
		return DPoint{X: float64(p.Trans.Disp.X) * dbu, Y: float64(p.Trans.Disp.Y) * dbu}
	}
	return DPoint{}
}

func (p *Port) clone() *Port {
	cp := *p
	if p.Trans != nil {
		t := *p.Trans
		cp.Trans = &t
	}
	if p.DCplxTrans != nil {
		t := *p.DCplxTrans
		cp.DCplxTrans = &t
	}
	return &cp
}
