// Package subtitles holds the time-aligned segment model, SRT formatting,
// and the reconciler that merges overlapping transcription windows into a
// single ordered track.
package subtitles

import "time"

// Segment is one time-aligned utterance in media time.
type Segment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	SourceWindow int     `json:"source_window"`
}

// Duration returns the segment length.
func (s Segment) Duration() time.Duration {
	return time.Duration((s.End - s.Start) * float64(time.Second))
}
