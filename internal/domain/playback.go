package domain

// Playback is the authoritative anchor clients extrapolate from.
// The server never advances PositionSeconds on a timer; it records the
// last command's state plus the server clock at that moment.
type Playback struct {
	VideoRef        string  `json:"video_ref"`
	IsPlaying       bool    `json:"is_playing"`
	PositionSeconds float64 `json:"position_seconds"`
	LastUpdateMs    int64   `json:"last_update_ms"`
}

// EstimatedPosition reconstructs "where the video should be" at nowMs.
// While paused the anchor position is exact, no drift.
func (p Playback) EstimatedPosition(nowMs int64) float64 {
	if !p.IsPlaying {
		return p.PositionSeconds
	}
	return p.PositionSeconds + float64(nowMs-p.LastUpdateMs)/1000
}
