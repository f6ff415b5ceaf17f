package models

// Caption is one numbered, timed caption block as returned by the captions endpoint.
// Times are in seconds from the start of the media.
type Caption struct {
	Index     int     `json:"index"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}
