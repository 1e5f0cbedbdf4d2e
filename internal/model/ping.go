package model

// StatusSuccessful is the status recorded for a probe that returned HTTP 200.
// Any other status string describes a failure.
const StatusSuccessful = "Successful"

// EndpointStatus is the outcome of one probe against a single endpoint.
type EndpointStatus struct {
	Endpoint string
	Status   string
}

// HostReport groups the endpoint outcomes of a single host.
type HostReport struct {
	Host   string
	Checks []EndpointStatus
}

// PingReport aggregates one scheduler tick, grouped by host in the order the
// hosts are configured. It is built fresh each tick and discarded after the
// notification is sent.
type PingReport []HostReport

// AllOK reports whether every check in the report succeeded.
func (r PingReport) AllOK() bool {
	for _, host := range r {
		for _, check := range host.Checks {
			if check.Status != StatusSuccessful {
				return false
			}
		}
	}
	return true
}
