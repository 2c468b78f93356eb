package types

// DatabaseConfig describes a raw connection used by the readiness probe.
type DatabaseConfig struct {
	Driver  string // "postgres", "mysql"
	DSN     string
	Timeout int // seconds
}
