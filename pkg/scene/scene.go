// Package scene assembles the world content the renderer consumes: the
// primitive list, the baked noise fields, the atmosphere model, and a camera
// that yields per-frame view state with valid reprojection matrices.
package scene

import (
	"fmt"

	"github.com/cloudmarch/sky/pkg/atmosphere"
	"github.com/cloudmarch/sky/pkg/core"
	"github.com/cloudmarch/sky/pkg/volume"
)

// Scene holds frame-independent world content
type Scene struct {
	Primitives []core.Primitive
	Base       core.Sampler3D
	Detail     core.Sampler3D
	Weather    core.Sampler2D
	Atmos      *atmosphere.Model
	VolumeCfg  volume.Config

	PlanetRadius float64
}

// Validate checks structural limits before the scene reaches the renderer
func (s *Scene) Validate() error {
	if len(s.Primitives) > core.MaxPrimitives {
		return fmt.Errorf("scene: %d primitives exceeds limit %d", len(s.Primitives), core.MaxPrimitives)
	}
	for i := range s.Primitives {
		if !s.Primitives[i].Form.Valid() {
			return fmt.Errorf("scene: primitive %d has invalid form %d", i, s.Primitives[i].Form)
		}
	}
	if s.Base == nil || s.Detail == nil || s.Weather == nil {
		return fmt.Errorf("scene: noise fields not initialized")
	}
	return nil
}

// Field builds the per-frame density field for the given view
func (s *Scene) Field(view *core.ViewState) *volume.Field {
	return volume.NewField(s.Base, s.Detail, s.Weather, view, s.VolumeCfg)
}
