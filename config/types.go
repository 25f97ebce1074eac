package config

// ServerConfig contains HTTP adapter configuration
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gt=0,lte=65535"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// FeedConfig points at one static GTFS feed
type FeedConfig struct {
	Name string `yaml:"name" validate:"required"`
	// Path is a feed directory or zip file; URL is fetched when Path is empty.
	Path string `yaml:"path" validate:"required_without=URL"`
	URL  string `yaml:"url" validate:"omitempty,url"`
	// SnapshotPath caches the parsed feed with gob between restarts.
	SnapshotPath string `yaml:"snapshotPath"`
	// RefreshMinutes reloads the feed periodically; 0 disables.
	RefreshMinutes int `yaml:"refreshMinutes" validate:"gte=0"`
}

// RedisConfig contains the optional shared cache backend
type RedisConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port" validate:"gt=0,lte=65535"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db" validate:"gte=0"`
	TimeoutMS  int    `yaml:"timeoutMS" validate:"gte=0"`
	CooldownMS int    `yaml:"cooldownMS" validate:"gte=0"`
}

// CacheConfig selects the result cache backend
type CacheConfig struct {
	Backend    string      `yaml:"backend" validate:"oneof=memory redis none"`
	TTLSeconds int         `yaml:"ttlSeconds" validate:"gte=0"`
	Redis      RedisConfig `yaml:"redis"`
}

// QueryConfig contains query defaults
type QueryConfig struct {
	DefaultRadiusKM      float64 `yaml:"defaultRadiusKM" validate:"gt=0"`
	MaxRadiusKM          float64 `yaml:"maxRadiusKM" validate:"gtefield=DefaultRadiusKM"`
	DefaultWindowMinutes int     `yaml:"defaultWindowMinutes" validate:"gt=0"`
	Timezone             string  `yaml:"timezone" validate:"omitempty,timezone"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	Feeds  []FeedConfig `yaml:"feeds" validate:"required,min=1,dive"`
	Cache  CacheConfig  `yaml:"cache"`
	Query  QueryConfig  `yaml:"query"`
}
