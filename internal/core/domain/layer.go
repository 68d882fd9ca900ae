package domain

import "fmt"

// LayerInfo describes a physical layer as a (layer, datatype) pair with an
// optional symbolic name. Two descriptors with the same pair refer to the
// same layer regardless of their names; the layout's registry decides the
// canonical form.
type LayerInfo struct {
	Layer    int    `json:"layer"`
	Datatype int    `json:"datatype"`
	Name     string `json:"name,omitempty"`
}

// String returns the symbolic name if set, otherwise "layer/datatype".
func (li LayerInfo) String() string {
	if li.Name != "" {
		return li.Name
	}
	return fmt.Sprintf("%d/%d", li.Layer, li.Datatype)
}

// Same reports whether both descriptors address the same physical layer.
func (li LayerInfo) Same(o LayerInfo) bool {
	return li.Layer == o.Layer && li.Datatype == o.Datatype
}
