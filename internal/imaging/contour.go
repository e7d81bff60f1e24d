package imaging

import (
	"image"
	"math"
)

// Contour is an ordered, closed boundary: consecutive points are
// 8-neighbours and the last point connects back to the first.
type Contour []image.Point

// moore lists the 8 neighbour offsets clockwise (y grows downward), starting east.
var moore = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// FindExternalContours returns the outer boundary of every 8-connected
// foreground component that is not enclosed by another component.
//
// # Algorithm
//
//  1. Label 8-connected foreground components with an iterative flood fill.
//  2. Flood the background 4-connected from the image border; anything the
//     flood reaches is "outside".
//  3. A component is external when it touches the border or borders an
//     outside pixel. Components sitting in the hole of another are dropped.
//  4. Trace each external component with Moore-neighbour tracing, starting
//     at its first pixel in raster order.
//
// Contours are returned in raster order of their starting pixel.
func FindExternalContours(m *Mask) []Contour {
	labels, starts := labelComponents(m)
	if len(starts) == 0 {
		return nil
	}
	outside := floodOutside(m)

	external := make([]bool, len(starts))
	w, h := m.Width, m.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l := labels[y*w+x]
			if l < 0 || external[l] {
				continue
			}
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				external[l] = true
				continue
			}
			if outside[y*w+x-1] || outside[y*w+x+1] || outside[(y-1)*w+x] || outside[(y+1)*w+x] {
				external[l] = true
			}
		}
	}

	contours := make([]Contour, 0, len(starts))
	for l, start := range starts {
		if external[l] {
			contours = append(contours, traceBoundary(m, start))
		}
	}
	return contours
}

// ClearBorder returns a copy of m without the components that touch the image border.
func ClearBorder(m *Mask) *Mask {
	labels, starts := labelComponents(m)
	touching := make([]bool, len(starts))
	w, h := m.Width, m.Height
	mark := func(x, y int) {
		if l := labels[y*w+x]; l >= 0 {
			touching[l] = true
		}
	}
	for x := 0; x < w; x++ {
		mark(x, 0)
		mark(x, h-1)
	}
	for y := 0; y < h; y++ {
		mark(0, y)
		mark(w-1, y)
	}

	out := NewMask(w, h)
	for i, l := range labels {
		if l >= 0 && !touching[l] {
			out.Pix[i] = true
		}
	}
	return out
}

// FillHoles returns a copy of m where background not reachable from the
// border is turned into foreground.
func FillHoles(m *Mask) *Mask {
	outside := floodOutside(m)
	out := NewMask(m.Width, m.Height)
	for i := range out.Pix {
		out.Pix[i] = m.Pix[i] || !outside[i]
	}
	return out
}

// labelComponents assigns each foreground pixel its 8-connected component
// index (-1 for background) and returns the first raster-order pixel of
// each component.
func labelComponents(m *Mask) ([]int32, []image.Point) {
	w, h := m.Width, m.Height
	labels := make([]int32, w*h)
	for i := range labels {
		labels[i] = -1
	}

	var starts []image.Point
	var stack []image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.Pix[y*w+x] || labels[y*w+x] >= 0 {
				continue
			}
			id := int32(len(starts))
			starts = append(starts, image.Point{X: x, Y: y})

			stack = append(stack[:0], image.Point{X: x, Y: y})
			labels[y*w+x] = id
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, d := range moore {
					nx, ny := p.X+d.X, p.Y+d.Y
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					i := ny*w + nx
					if m.Pix[i] && labels[i] < 0 {
						labels[i] = id
						stack = append(stack, image.Point{X: nx, Y: ny})
					}
				}
			}
		}
	}
	return labels, starts
}

// floodOutside marks background pixels 4-connected to the image border.
func floodOutside(m *Mask) []bool {
	w, h := m.Width, m.Height
	outside := make([]bool, w*h)
	var stack []image.Point
	push := func(x, y int) {
		i := y*w + x
		if !m.Pix[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, image.Point{X: x, Y: y})
		}
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < h-1 {
			push(p.X, p.Y+1)
		}
	}
	return outside
}

// traceBoundary walks the outer boundary of the component containing start
// clockwise. start must be the component's first pixel in raster order, so
// its west neighbour is background.
func traceBoundary(m *Mask, start image.Point) Contour {
	contour := Contour{start}
	cur, back := start, 4
	limit := 4*len(m.Pix) + 8

	for step := 0; step < limit; step++ {
		next, nextBack, ok := mooreStep(m, cur, back)
		if !ok {
			break // isolated pixel
		}
		if cur == start && len(contour) > 1 && next == contour[1] {
			break
		}
		contour = append(contour, next)
		cur, back = next, nextBack
	}

	if len(contour) > 1 && contour[len(contour)-1] == start {
		contour = contour[:len(contour)-1]
	}
	return contour
}

// mooreStep scans the neighbours of cur clockwise, beginning just after the
// backtrack direction, and returns the first foreground pixel together with
// the backtrack direction to use from it.
func mooreStep(m *Mask, cur image.Point, back int) (image.Point, int, bool) {
	for k := 1; k <= 8; k++ {
		d := (back + k) % 8
		p := cur.Add(moore[d])
		if !m.At(p.X, p.Y) {
			continue
		}
		prev := cur.Add(moore[(back+k-1)%8])
		return p, directionOf(prev.Sub(p)), true
	}
	return image.Point{}, 0, false
}

func directionOf(d image.Point) int {
	for i, v := range moore {
		if v == d {
			return i
		}
	}
	return 0
}

// Area returns the enclosed area by the shoelace formula, taking points as
// pixel centers (a filled w×h block traces to (w-1)×(h-1)).
func (c Contour) Area() float64 {
	return polygonArea(c)
}

// Perimeter returns the closed arc length.
func (c Contour) Perimeter() float64 {
	return closedLength(c)
}

// Bounds returns the bounding box of the contour points (max exclusive).
func (c Contour) Bounds() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c[0], Max: c[0].Add(image.Point{X: 1, Y: 1})}
	for _, p := range c[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Point{X: 1, Y: 1})})
	}
	return r
}

// ApproxPolygon simplifies a closed curve with Douglas-Peucker. The curve is
// split at two mutually distant points so the result does not depend on where
// tracing started.
func ApproxPolygon(pts []image.Point, epsilon float64) []image.Point {
	n := len(pts)
	if n < 3 {
		return append([]image.Point(nil), pts...)
	}
	a := farthestFrom(pts, pts[0])
	b := farthestFrom(pts, pts[a])
	if a == b {
		return []image.Point{pts[a]}
	}
	i, j := a, b
	if i > j {
		i, j = j, i
	}

	first := douglasPeucker(pts[i:j+1], epsilon)
	wrap := make([]image.Point, 0, n-j+i+1)
	wrap = append(wrap, pts[j:]...)
	wrap = append(wrap, pts[:i+1]...)
	second := douglasPeucker(wrap, epsilon)

	out := make([]image.Point, 0, len(first)+len(second))
	out = append(out, first...)
	if len(second) > 2 {
		out = append(out, second[1:len(second)-1]...)
	}
	return out
}

func douglasPeucker(pts []image.Point, epsilon float64) []image.Point {
	if len(pts) < 3 {
		return append([]image.Point(nil), pts...)
	}
	first, last := pts[0], pts[len(pts)-1]
	idx, maxDist := 0, -1.0
	for i := 1; i < len(pts)-1; i++ {
		if d := segmentDistance(pts[i], first, last); d > maxDist {
			idx, maxDist = i, d
		}
	}
	if maxDist <= epsilon {
		return []image.Point{first, last}
	}
	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

func farthestFrom(pts []image.Point, from image.Point) int {
	best, bestDist := 0, -1
	for i, p := range pts {
		dx, dy := p.X-from.X, p.Y-from.Y
		if d := dx*dx + dy*dy; d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func segmentDistance(p, a, b image.Point) float64 {
	ax, ay := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-ax, float64(b.Y)-ay
	px, py := float64(p.X)-ax, float64(p.Y)-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px, py)
	}
	t := (px*dx + py*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-t*dx, py-t*dy)
}

// polygonArea is the absolute shoelace area of a closed polygon.
func polygonArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum int
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

func closedLength(pts []image.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var total float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		total += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return total
}

// PolygonArea returns the enclosed area of an ordered vertex list.
func PolygonArea(pts []image.Point) float64 { return polygonArea(pts) }

// PolygonPerimeter returns the closed length of an ordered vertex list.
func PolygonPerimeter(pts []image.Point) float64 { return closedLength(pts) }
