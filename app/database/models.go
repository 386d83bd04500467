package database

// Story is a cached story row. Stories are immutable once created: rows are
// only ever inserted or replaced wholesale from network payloads, never
// mutated locally.
type Story struct {
	ID          string
	PhotoURL    string
	CreatedAt   string // ISO-8601, as delivered by the service
	Name        string
	Description string
	Lon         *float64 // set only when the author shared location
	Lat         *float64
}

// RemoteKey records which remote page a cached story belongs to. One key
// exists per cached story; the whole set is derived and disposable, cleared
// and regenerated on every refresh. A nil NextKey signals that no further
// pages exist past this story's page.
type RemoteKey struct {
	ID      string
	PrevKey *int
	NextKey *int
}
