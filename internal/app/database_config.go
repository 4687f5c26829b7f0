package app

import "github.com/charlesng35/bellcenter/internal/database"

// DatabaseOptions converts DatabaseConfig into the database package representation.
func (c DatabaseConfig) DatabaseOptions() database.Config {
	return database.Config{
		Driver:          c.Driver,
		Path:            c.Path,
		DSN:             c.DSN,
		Host:            c.Host,
		Port:            c.Port,
		Name:            c.Name,
		User:            c.Username,
		Password:        c.Password,
		Options:         c.Options,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		LogQueries:      c.LogQueries,
	}
}
