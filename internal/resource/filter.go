package resource

// Threshold is the minimum availability a node must offer to be listed.
type Threshold struct {
	MinGPUs     int
	MinCPUs     int
	MinMemoryGB float64
}

// DefaultThreshold lists nodes with at least one free GPU, one free CPU and 6 GB of memory.
func DefaultThreshold() Threshold {
	return Threshold{MinGPUs: 1, MinCPUs: 1, MinMemoryGB: 6}
}

// Meets reports whether the record satisfies every minimum.
// Unknown CPU or memory availability never satisfies a threshold.
func (t Threshold) Meets(r NodeRecord) bool {
	if r.GPUsAvailable < t.MinGPUs {
		return false
	}
	if r.CPUsAvailable == nil || *r.CPUsAvailable < t.MinCPUs {
		return false
	}
	if r.MemoryAvailableGB == nil || *r.MemoryAvailableGB < t.MinMemoryGB {
		return false
	}
	return true
}

// Filter returns the records meeting the threshold, in their original order.
func Filter(records []NodeRecord, t Threshold) []NodeRecord {
	out := make([]NodeRecord, 0, len(records))
	for _, r := range records {
		if t.Meets(r) {
			out = append(out, r)
		}
	}
	return out
}
