package domain

// EnclosureSection is one cladding band around a waveguide core: the layer
// it is drawn on and its offset range from the core edge, in database units.
type EnclosureSection struct {
	Layer LayerInfo `json:"layer"`
	DMin  int64     `json:"d_min"`
	DMax  int64     `json:"d_max"`
}

// Enclosure describes the layers drawn around a routed core. It is a
// registered opaque value: naming and caching identify it purely by name,
// so two builds referring to the same named enclosure share a cache entry.
type Enclosure struct {
	Name     string             `json:"name"`
	Sections []EnclosureSection `json:"sections,omitempty"`
}

// OpaqueID implements Opaque.
func (e *Enclosure) OpaqueID() string { return e.Name }

// Apply draws the enclosure sections around the given core box into the
// cell.
func (e *Enclosure) Apply(c *Cell, core Box) error {
	for _, sec := range e.Sections {
		layer := c.Layout().LayerIndex(sec.Layer)
		b := Box{
			Left:   core.Left - sec.DMax,
			Bottom: core.Bottom - sec.DMax,
			Right:  core.Right + sec.DMax,
			Top:    core.Top + sec.DMax,
		}
		if err := c.Insert(layer, BoxShape(b)); err != nil {
			return err
		}
	}
	return nil
}
