package models

// LoadStats summarizes one load (or repair) pass. A fresh value is produced
// by every call; nothing is carried between loads.
type LoadStats struct {
	Loaded     int      `json:"loaded"`
	Skipped    int      `json:"skipped"`
	Duplicate  int      `json:"duplicate"`
	BadRecords []string `json:"bad_records"`
}

// Processed is the number of non-blank body records seen.
func (s LoadStats) Processed() int {
	return s.Loaded + s.Skipped + s.Duplicate
}

// Snapshot is what a storage backend hands to the gateway: the raw header
// record and the raw vehicle records in storage order.
type Snapshot struct {
	Header  string
	Records []string
}
