package heap

// A releaser that records every released address in call order
type RecordingReleaser struct {
	Released []Address
}

func (r *RecordingReleaser) ReleaseCell(addr Address) {
	r.Released = append(r.Released, addr)
}
