package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncTripCreated(estimated bool)                  {}
func (n *NoopRecorder) IncTripDeleted()                                {}
func (n *NoopRecorder) IncDistanceLookup(source string)                {}
func (n *NoopRecorder) ObserveDistanceDuration(duration time.Duration) {}
func (n *NoopRecorder) IncMapsLoad(status string)                      {}
func (n *NoopRecorder) IncFavoriteCreated()                            {}
func (n *NoopRecorder) IncFavoriteDeleted()                            {}
func (n *NoopRecorder) IncHomeAddressChanged()                         {}
func (n *NoopRecorder) IncExport(format string)                        {}
