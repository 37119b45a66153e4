package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type point = r2.Vec

// rescale centres points on their mean and scales them so the largest
// absolute coordinate is one. Coincident points collapse to the origin.
func rescale(points []point) {
	if len(points) == 0 {
		return
	}

	var mean point
	for _, p := range points {
		mean = r2.Add(mean, p)
	}
	mean = r2.Scale(1/float64(len(points)), mean)

	limit := 0.0
	for i := range points {
		points[i] = r2.Sub(points[i], mean)
		limit = math.Max(limit, math.Max(math.Abs(points[i].X), math.Abs(points[i].Y)))
	}

	if limit < 1e-12 {
		for i := range points {
			points[i] = point{}
		}
		return
	}
	for i := range points {
		points[i] = r2.Scale(1/limit, points[i])
	}
}

// circle places n points evenly on the unit circle, starting at angle zero
func circle(n int) []point {
	points := make([]point, n)
	if n == 1 {
		return points
	}
	for i := range points {
		theta := 2 * math.Pi * float64(i) / float64(n)
		points[i] = point{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	return points
}
