package cfg

type Cfg struct {
	// Remote service configuration
	BaseURL   string
	UserAgent string

	// Local storage configuration
	DBPath    string
	PrefsPath string

	// Paging configuration
	PageSize int

	// Application metadata
	Debug   bool
	Version string
}
