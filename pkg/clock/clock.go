package clock

import "time"

// Clock supplies the current instant and the calendar date in a fixed location.
// Dates are returned as midnight UTC of the local day so they compare and
// persist as plain DATE values.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

func New(loc *time.Location) *Clock {
	return NewWithFunc(time.Now, loc)
}

func NewWithFunc(now func() time.Time, loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{now: now, loc: loc}
}

func (c *Clock) Now() time.Time { return c.now() }

func (c *Clock) Today() time.Time {
	return Date(c.now().In(c.loc))
}

// Date truncates t to its calendar day, keeping the wall-clock date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Manual is a settable clock for tests.
type Manual struct {
	t time.Time
}

func NewManual(t time.Time) *Manual { return &Manual{t: t} }

func (m *Manual) Now() time.Time { return m.t }
func (m *Manual) Advance(d time.Duration) { m.t = m.t.Add(d) }
func (m *Manual) Set(t time.Time) { m.t = t }
func (m *Manual) Clock() *Clock { return NewWithFunc(m.Now, time.UTC) }
