package sources

// FSUsage is filesystem capacity in bytes as reported by statfs.
type FSUsage struct {
	Total uint64
	Used  uint64
	// Avail is the space available to unprivileged users, which excludes
	// the reserved blocks.
	Avail uint64
}

// Percent returns usage the way df does: used / (used + avail).
func (u FSUsage) Percent() float64 {
	denom := u.Used + u.Avail
	if denom == 0 {
		return 0
	}
	return float64(u.Used) / float64(denom) * 100
}

// StatFunc reads filesystem usage for a path.
type StatFunc func(path string) (FSUsage, error)
