package archive

import "time"

// TimestampLayout is the 14-digit capture timestamp used by the index.
const TimestampLayout = "20060102150405"

// Snapshot is one capture row from the snapshot index.
type Snapshot struct {
	Timestamp  string
	StatusCode int
	Original   string
	MimeType   string
}

func (s Snapshot) Time() (time.Time, bool) {
	t, err := time.Parse(TimestampLayout, s.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// OK reports whether the capture was an HTTP 200 response.
func (s Snapshot) OK() bool {
	return s.StatusCode == 200
}
