// Package metrics exposes the engine's operational counters on the
// default prometheus registry, served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cinema_rooms_open",
		Help: "Rooms currently held in the store.",
	})

	ParticipantsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cinema_participants_connected",
		Help: "Participants currently on a roster across all rooms.",
	})

	ChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinema_chat_messages_total",
		Help: "Chat messages accepted into a room log.",
	})

	PlaybackControls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinema_playback_controls_total",
		Help: "Playback control commands applied, by action.",
	}, []string{"action"})

	FramesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinema_screen_frames_relayed_total",
		Help: "Screen frames passed through to room peers.",
	})

	BroadcastDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinema_broadcast_drops_total",
		Help: "Events dropped because a connection's send buffer was full.",
	})
)
