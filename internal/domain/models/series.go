package models

import (
	"sort"

	"cloud.google.com/go/civil"
)

// Observation is a single dated value of a series.
type Observation struct {
	Date  civil.Date `json:"date"`
	Value float64    `json:"value"`
}

// TimeSeries is a named sequence of observations with unique, ascending dates.
type TimeSeries struct {
	ID     string        `json:"id"`
	Points []Observation `json:"points"`
}

// NewTimeSeries sorts points by date and keeps the last observation for duplicated dates.
// The input slice is not modified.
func NewTimeSeries(id string, points []Observation) TimeSeries {
	pts := make([]Observation, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })

	out := pts[:0]
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Date == p.Date {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return TimeSeries{ID: id, Points: out}
}

// Len returns the number of observations.
func (s TimeSeries) Len() int { return len(s.Points) }

// Since returns a new series restricted to dates on or after start.
func (s TimeSeries) Since(start civil.Date) TimeSeries {
	i := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Date.Before(start) })
	pts := make([]Observation, len(s.Points)-i)
	copy(pts, s.Points[i:])
	return TimeSeries{ID: s.ID, Points: pts}
}

// Last returns the latest observation.
func (s TimeSeries) Last() (Observation, bool) {
	if len(s.Points) == 0 {
		return Observation{}, false
	}
	return s.Points[len(s.Points)-1], true
}
