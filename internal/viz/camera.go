package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera projects points around the origin onto the canvas with a simple
// perspective.
type Camera struct {
	Distance         float64
	RotX, RotY, RotZ float64
	Zoom             float64
	// Extent is the world half-width that fills a third of the canvas at
	// unit zoom.
	Extent float64
}

func NewCamera(extent float64) *Camera {
	if extent <= 0 {
		extent = 1
	}
	return &Camera{Distance: 4, Zoom: 1, Extent: extent, RotX: 0.4}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// rotate applies the camera rotation about x, then y, then z.
func (c *Camera) rotate(p r3.Vec) r3.Vec {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project maps a world point to dot coordinates on a sw x sh canvas. It
// returns the depth for painter ordering and whether the point landed on
// the canvas.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	rot := r3.Scale(c.Zoom/c.Extent, c.rotate(p))
	if rot.Z >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	minDim := float64(min(sw, sh))
	pScale := minDim / 3.0
	x := int(rot.X*scale*pScale) + sw/2
	y := int(-rot.Y*scale*pScale) + sh/2
	return x, y, rot.Z, x >= 0 && x < sw && y >= 0 && y < sh
}

// boxEdges lists the twelve edges of a box centered on the origin.
func boxEdges(box r3.Vec) [][2]r3.Vec {
	h := r3.Scale(0.5, box)
	v := []r3.Vec{
		{X: -h.X, Y: -h.Y, Z: -h.Z}, {X: h.X, Y: -h.Y, Z: -h.Z}, {X: h.X, Y: h.Y, Z: -h.Z}, {X: -h.X, Y: h.Y, Z: -h.Z},
		{X: -h.X, Y: -h.Y, Z: h.Z}, {X: h.X, Y: -h.Y, Z: h.Z}, {X: h.X, Y: h.Y, Z: h.Z}, {X: -h.X, Y: h.Y, Z: h.Z},
	}
	idx := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	edges := make([][2]r3.Vec, len(idx))
	for i, e := range idx {
		edges[i] = [2]r3.Vec{v[e[0]], v[e[1]]}
	}
	return edges
}
