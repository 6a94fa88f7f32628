package master

// scheduleNext finds the first replica with id >= nextSched whose status is
// Online, wrapping around to id 0 if nothing past nextSched qualifies;
// advances nextSched to (id+1) mod N and returns it, or nil if no replica is
// Online at all. O(N) per call, which is fine for the small, static replica
// lists this service targets.
func (m *Master) scheduleNext() *replicaConn {
	n := uint32(len(m.replicas))
	if n == 0 {
		return nil
	}

	for i := uint32(0); i < n; i++ {
		id := (m.nextSched + i) % n
		r := m.replicas[id]
		if r.status == Online {
			m.nextSched = (id + 1) % n
			return r
		}
	}

	return nil
}
