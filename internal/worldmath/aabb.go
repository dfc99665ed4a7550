package worldmath

import "math"

// AABB is an axis-aligned bounding box in center-extent form, matching the
// wire representation of an Obstacle (spec.md §3): Center is the box
// center, HalfSize is half the full width/height/depth along each axis.
type AABB struct {
	Center   Vector3
	HalfSize Vector3
}

// NewAABB builds an AABB from a center and a full size (width/height/depth).
func NewAABB(center, size Vector3) AABB {
	return AABB{Center: center, HalfSize: size.Scale(0.5)}
}

// MinXZ and MaxXZ return the box's footprint bounds on the XZ plane, used
// by the spatial grid to bin obstacles into cells.
func (b AABB) MinXZ() (x, z float64) {
	return b.Center.X - b.HalfSize.X, b.Center.Z - b.HalfSize.Z
}

func (b AABB) MaxXZ() (x, z float64) {
	return b.Center.X + b.HalfSize.X, b.Center.Z + b.HalfSize.Z
}

// Inflated returns a copy of b whose half-extents are each grown by r.
// Used by collision checks that treat a point as a sphere/capsule of
// radius r (e.g. player/bot/bullet radii) against a solid obstacle.
func (b AABB) Inflated(r float64) AABB {
	return AABB{
		Center:   b.Center,
		HalfSize: Vector3{b.HalfSize.X + r, b.HalfSize.Y + r, b.HalfSize.Z + r},
	}
}

// ContainsXZ reports whether the point (x, z) falls within the box's XZ
// footprint, ignoring Y entirely. Used for ground-level collision tests.
func (b AABB) ContainsXZ(x, z float64) bool {
	minX, minZ := b.MinXZ()
	maxX, maxZ := b.MaxXZ()
	return x >= minX && x <= maxX && z >= minZ && z <= maxZ
}

// ContainsPoint reports whether p falls within the full 3D box.
func (b AABB) ContainsPoint(p Vector3) bool {
	return p.X >= b.Center.X-b.HalfSize.X && p.X <= b.Center.X+b.HalfSize.X &&
		p.Y >= b.Center.Y-b.HalfSize.Y && p.Y <= b.Center.Y+b.HalfSize.Y &&
		p.Z >= b.Center.Z-b.HalfSize.Z && p.Z <= b.Center.Z+b.HalfSize.Z
}

// RayIntersect runs the slab method against the segment from start to end,
// returning whether the segment intersects b and, if so, the intersection
// fraction t in [0, 1] along the segment.
//
// tMin/tMax are tracked in the segment's own parametrization (0 at start,
// 1 at end) rather than in absolute distance units, so a near-zero
// direction component on an axis the box doesn't span is handled by the
// standard "origin inside slab" rule instead of a division.
func (b AABB) RayIntersect(start, end Vector3) (hit bool, t float64) {
	dir := end.Sub(start)

	tMin, tMax := 0.0, 1.0

	axes := [3]struct {
		origin, d, boxCenter, half float64
	}{
		{start.X, dir.X, b.Center.X, b.HalfSize.X},
		{start.Y, dir.Y, b.Center.Y, b.HalfSize.Y},
		{start.Z, dir.Z, b.Center.Z, b.HalfSize.Z},
	}

	for _, a := range axes {
		lo := a.boxCenter - a.half
		hi := a.boxCenter + a.half

		if math.Abs(a.d) < 1e-9 {
			// Segment is parallel to this axis' slab: only survives if
			// the origin already lies within the slab bounds.
			if a.origin < lo || a.origin > hi {
				return false, 0
			}
			continue
		}

		invD := 1.0 / a.d
		t0 := (lo - a.origin) * invD
		t1 := (hi - a.origin) * invD
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return false, 0
		}
	}

	return true, tMin
}
