package redis

// Config holds Redis Stack connection and index settings.
type Config struct {
	Addr        string `env:"REDIS_ADDR"         envDefault:"localhost:6379"`
	Password    string `env:"REDIS_PASSWORD"`
	DB          int    `env:"REDIS_DB"           envDefault:"0"`
	IndexPrefix string `env:"REDIS_INDEX_PREFIX" envDefault:"idx:"`
	KeyPrefix   string `env:"REDIS_KEY_PREFIX"   envDefault:"doc:"`
}
