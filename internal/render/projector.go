package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera constants for the cloud view: a perspective camera on the +Z
// axis looking at the origin.
const (
	FieldOfView = 75
	CameraZ     = 5
	NearPlane   = 0.1
	FarPlane    = 1000
)

// Projector maps particle positions to pixel coordinates for a viewport.
type Projector struct {
	width, height int
	view          mgl32.Mat4
	projection    mgl32.Mat4
}

// NewProjector builds the camera for a width x height viewport.
func NewProjector(width, height int) *Projector {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	aspect := float32(width) / float32(height)

	return &Projector{
		width:  width,
		height: height,
		view: mgl32.LookAtV(
			mgl32.Vec3{0, 0, CameraZ},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 1, 0},
		),
		projection: mgl32.Perspective(mgl32.DegToRad(FieldOfView), aspect, NearPlane, FarPlane),
	}
}

// Size returns the viewport size.
func (p *Projector) Size() (width, height int) {
	return p.width, p.height
}

// ModelView returns the view matrix combined with the cloud's spin about
// the vertical axis.
func (p *Projector) ModelView(rotation float64) mgl32.Mat4 {
	return p.view.Mul4(mgl32.HomogRotate3DY(float32(rotation)))
}

// Project maps a model-space point to pixel coordinates. depth is the
// distance in front of the camera. ok is false for points behind the
// camera or outside the view volume.
func (p *Projector) Project(modelView mgl32.Mat4, pt mgl32.Vec3) (x, y, depth float32, ok bool) {
	eye := modelView.Mul4x1(pt.Vec4(1))
	depth = -eye.Z()
	if depth <= NearPlane {
		return 0, 0, depth, false
	}

	clip := p.projection.Mul4x1(eye)
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	if ndcX < -1 || ndcX > 1 || ndcY < -1 || ndcY > 1 {
		return 0, 0, depth, false
	}

	x = (ndcX + 1) / 2 * float32(p.width)
	y = (1 - ndcY) / 2 * float32(p.height)
	return x, y, depth, true
}

// PointRadius returns the on-screen radius in pixels of a point of world
// size at the given depth, with size attenuation.
func (p *Projector) PointRadius(size float64, depth float32) float64 {
	if depth <= 0 {
		return 0
	}
	diameter := size * float64(p.height) / 2 / float64(depth)
	return diameter / 2
}
