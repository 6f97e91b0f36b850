package cfg

type Cfg struct {
	// Storage
	DBPath    string
	RedisAddr string
	CacheTTL  int

	// Application configuration
	FeedsDir          string
	VocabularyFile    string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Aggregation defaults
	WindowDays int
	MaxResults int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
