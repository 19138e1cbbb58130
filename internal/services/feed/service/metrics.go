package service

import "inboxd/internal/platform/metrics"

// Instrument exposes the simulator state as scrape-time gauges
func Instrument(reg *metrics.Registry, s *Simulator) {
	reg.GaugeFunc("feed", "position", "Index of the next recorded event.", func() float64 {
		return float64(s.Status().Position)
	})
	reg.GaugeFunc("feed", "delivered", "Events delivered since startup.", func() float64 {
		return float64(s.Status().Delivered)
	})
	reg.GaugeFunc("feed", "subscriber_panics", "Subscriber panics recovered since startup.", func() float64 {
		return float64(s.Status().Panics)
	})
	reg.GaugeFunc("feed", "streaming", "1 while the feed is streaming.", func() float64 {
		if s.Status().Streaming {
			return 1
		}
		return 0
	})
}
