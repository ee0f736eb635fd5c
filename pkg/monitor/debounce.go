package monitor

// Debouncer counts consecutive undervoltage samples and decides when the
// condition has persisted long enough to authorize a shutdown. Not safe
// for concurrent use; it is owned by the control loop.
type Debouncer struct {
	limit int
	count int
}

// NewDebouncer returns a debouncer that trips once more than limit
// consecutive samples are undervoltage.
func NewDebouncer(limit int) *Debouncer {
	return &Debouncer{limit: limit}
}

// Observe records one corrected sample against the threshold and reports
// whether the debouncer has tripped. A sample strictly below the
// threshold increments the counter; a sample at or above it resets the
// counter to 0, regardless of history. Equal-to-threshold is acceptable,
// not undervoltage.
func (d *Debouncer) Observe(correctedVoltage, threshold float64) bool {
	if correctedVoltage < threshold {
		d.count++
	} else {
		d.count = 0
	}
	return d.count > d.limit
}

// Count returns the current consecutive-undervoltage count.
func (d *Debouncer) Count() int {
	return d.count
}

// Limit returns the configured trip limit.
func (d *Debouncer) Limit() int {
	return d.limit
}

// Reset clears the counter. The control loop calls this after a trip that
// was suppressed by debug mode, so the next cycle does not immediately
// re-trip.
func (d *Debouncer) Reset() {
	d.count = 0
}
