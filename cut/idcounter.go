package cut

// IDCounter mints fresh, monotonically increasing flowline ids for cut
// products. It is a pipeline-scoped object passed in by the caller, not a
// process-wide singleton (spec.md §9 "global state").
type IDCounter struct {
	next int64
}

// NewIDCounter returns a counter whose first minted id is base.
func NewIDCounter(base int64) *IDCounter {
	return &IDCounter{next: base}
}

// Next mints and returns the next id.
func (c *IDCounter) Next() int64 {
	id := c.next
	c.next++
	return id
}
