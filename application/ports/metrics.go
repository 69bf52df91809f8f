package ports

// Metrics receives domain events worth counting
type Metrics interface {
	RecordThoughtAccepted()
	RecordThoughtRejected(reason string)
	RecordEchoStored()
	RecordEchoReturned(source string)
	RecordHeartbeat()
}

// NopMetrics discards every event
type NopMetrics struct{}

func (NopMetrics) RecordThoughtAccepted()       {}
func (NopMetrics) RecordThoughtRejected(string) {}
func (NopMetrics) RecordEchoStored()            {}
func (NopMetrics) RecordEchoReturned(string)    {}
func (NopMetrics) RecordHeartbeat()             {}
