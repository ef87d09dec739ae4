package cfg

type Cfg struct {
	// Record store configuration
	MongoURI string
	MongoDB  string

	// Operational state database (embedded)
	StatePath string

	// Application configuration
	FeedsDir          string
	Port              string
	WorkerCount       int
	SchedulerInterval int // seconds
	FetchTimeout      int // seconds, default per-request timeout
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
