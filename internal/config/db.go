package config

// DB holds the database connection settings. Extras is passed through to
// the DSN query string unchanged.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string
}
