package imaging

import (
	"image"
	"math"
	"sort"
)

// PointF is a point with sub-pixel coordinates.
type PointF struct {
	X, Y float64
}

// RotatedRect is a rectangle of size Width×Height centered at Center and
// rotated Angle degrees (clockwise on screen, since y grows downward).
type RotatedRect struct {
	Center PointF
	Width  float64
	Height float64
	Angle  float64
}

// Area returns Width*Height.
func (r RotatedRect) Area() float64 { return r.Width * r.Height }

// Corners returns the four corners, clockwise from the one that is top-left
// when Angle is 0.
func (r RotatedRect) Corners() [4]PointF {
	rad := r.Angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	hw, hh := r.Width/2, r.Height/2
	local := [4]PointF{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	var out [4]PointF
	for i, p := range local {
		out[i] = PointF{
			X: r.Center.X + p.X*cos - p.Y*sin,
			Y: r.Center.Y + p.X*sin + p.Y*cos,
		}
	}
	return out
}

// ConvexHull returns the hull of pts in counter-clockwise order (Andrew's
// monotone chain). Collinear points are dropped.
func ConvexHull(pts []image.Point) []image.Point {
	if len(pts) < 3 {
		return uniquePoints(pts)
	}
	sorted := append([]image.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]image.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// MinAreaRect returns the smallest rotated rectangle enclosing pts, found
// by rotating calipers over the convex hull edges. The angle is folded into
// (-45, 45], swapping Width and Height as needed.
func MinAreaRect(pts []image.Point) RotatedRect {
	hull := ConvexHull(pts)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: PointF{float64(hull[0].X), float64(hull[0].Y)}}
	}

	best := RotatedRect{Width: math.Inf(1), Height: math.Inf(1)}
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		ux, uy := dx/length, dy/length

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			px, py := float64(p.X), float64(p.Y)
			u := px*ux + py*uy
			v := -px*uy + py*ux
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}
		w, h := maxU-minU, maxV-minV
		if w*h >= best.Width*best.Height {
			continue
		}
		cu, cv := (minU+maxU)/2, (minV+maxV)/2
		best = RotatedRect{
			Center: PointF{X: cu*ux - cv*uy, Y: cu*uy + cv*ux},
			Width:  w,
			Height: h,
			Angle:  math.Atan2(uy, ux) * 180 / math.Pi,
		}
	}
	if math.IsInf(best.Width, 1) {
		return RotatedRect{Center: PointF{float64(hull[0].X), float64(hull[0].Y)}}
	}
	return canonicalRect(best)
}

func canonicalRect(r RotatedRect) RotatedRect {
	for r.Angle > 45 {
		r.Angle -= 90
		r.Width, r.Height = r.Height, r.Width
	}
	for r.Angle <= -45 {
		r.Angle += 90
		r.Width, r.Height = r.Height, r.Width
	}
	return r
}

func uniquePoints(pts []image.Point) []image.Point {
	out := make([]image.Point, 0, len(pts))
	for _, p := range pts {
		dup := false
		for _, q := range out {
			if p == q {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// EdgeAngle returns the direction of segment a→b in degrees, in [0, 180).
func EdgeAngle(a, b image.Point) float64 {
	deg := math.Atan2(float64(b.Y-a.Y), float64(b.X-a.X)) * 180 / math.Pi
	deg = math.Mod(deg, 180)
	if deg < 0 {
		deg += 180
	}
	return deg
}
