package models

// VideoRoom is the joined view of a completed room and its completed compositions.
// Built per request; never stored.
type VideoRoom struct {
	Sid          string        `json:"sid"`
	Name         string        `json:"name"`
	Duration     int           `json:"duration"`
	Compositions []Composition `json:"compositions"`
}
