package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"tedrecords/internal/recordstore"
)

// Config holds the connection flags of one invocation.
type Config struct {
	Database string
	Host     string
	Port     string
	Username string
	Password string
	Command  string
	// DialectOverride selects the database type explicitly, e.g. from a
	// named database in config.toml.
	DialectOverride *recordstore.Dialect
	VimMode         bool
	Limit           int
}

var dialectIcons = map[recordstore.Dialect]string{
	recordstore.SQLite:     "🪶",
	recordstore.PostgreSQL: "🐘",
	recordstore.MySQL:      "🐬",
}

func (c *Config) detectDialect() recordstore.Dialect {
	if c.DialectOverride != nil {
		return *c.DialectOverride
	}
	if strings.HasSuffix(c.Database, ".sqlite") || strings.HasSuffix(c.Database, ".sqlite3") ||
		strings.HasSuffix(c.Database, ".db") {
		return recordstore.SQLite
	}
	return recordstore.PostgreSQL
}

func (c *Config) buildConnectionString() (string, recordstore.Dialect, error) {
	dialect := c.detectDialect()

	switch dialect {
	case recordstore.SQLite:
		if _, err := os.Stat(c.Database); os.IsNotExist(err) {
			return "", dialect, fmt.Errorf("sqlite file does not exist: %s", c.Database)
		}
		return c.Database, dialect, nil

	case recordstore.PostgreSQL:
		parts := []string{"dbname=" + c.Database}
		if c.Host != "" {
			parts = append(parts, "host="+c.Host)
		}
		if c.Port != "" {
			parts = append(parts, "port="+c.Port)
		}
		if c.Username != "" {
			parts = append(parts, "user="+c.Username)
		} else if u, err := user.Current(); err == nil {
			parts = append(parts, "user="+u.Username)
		}
		if c.Password != "" {
			parts = append(parts, "password="+c.Password)
		}
		parts = append(parts, "sslmode=disable")
		return strings.Join(parts, " "), dialect, nil

	case recordstore.MySQL:
		var b strings.Builder
		if c.Username != "" {
			b.WriteString(c.Username)
		} else if u, err := user.Current(); err == nil {
			b.WriteString(u.Username)
		}
		if c.Password != "" {
			b.WriteString(":" + c.Password)
		}
		host, port := c.Host, c.Port
		if host == "" {
			host = "localhost"
		}
		if port == "" {
			port = "3306"
		}
		fmt.Fprintf(&b, "@tcp(%s:%s)/%s?parseTime=true", host, port, c.Database)
		return b.String(), dialect, nil

	default:
		return "", dialect, fmt.Errorf("unsupported database type %s", dialect)
	}
}

func (c *Config) connect(ctx context.Context) (*sql.DB, recordstore.Dialect, error) {
	connStr, dialect, err := c.buildConnectionString()
	if err != nil {
		return nil, dialect, err
	}

	db, err := sql.Open(dialect.DriverName(), connStr)
	if err != nil {
		return nil, dialect, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, dialect, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, dialect, nil
}

// DatabaseConfig is a named database in config.toml:
//
//	[databases.crm]
//	type = "postgres"
//	database = "crm"
//	host = "localhost"
type DatabaseConfig struct {
	Type     string `toml:"type"`
	Database string `toml:"database"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	// OpenRecordIn overrides the settings.json preference for this database.
	OpenRecordIn string `toml:"open_record_in"`
}

// FileConfig is the parsed config.toml.
type FileConfig struct {
	Databases map[string]DatabaseConfig `toml:"databases"`
}

// getConfigPath returns the full path to config.toml
func getConfigPath() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfig reads config.toml. A missing file yields an empty config.
func LoadConfig(path string) (*FileConfig, error) {
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func loadConfig() (*FileConfig, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfig(path)
}

// GetDatabase looks up a named database.
func (f *FileConfig) GetDatabase(name string) (DatabaseConfig, bool) {
	if f == nil {
		return DatabaseConfig{}, false
	}
	db, ok := f.Databases[name]
	return db, ok
}

// apply fills connection fields that were not set by flags.
func (d DatabaseConfig) apply(c *Config) error {
	if d.Type != "" {
		dialect, err := recordstore.ParseDialect(d.Type)
		if err != nil {
			return err
		}
		c.DialectOverride = &dialect
	}
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	if d.Database != "" {
		c.Database = d.Database
	}
	fill(&c.Host, d.Host)
	fill(&c.Port, d.Port)
	fill(&c.Username, d.Username)
	fill(&c.Password, d.Password)
	return nil
}

// GetTables lists the tables of the connected database.
func GetTables(ctx context.Context, db *sql.DB, dialect recordstore.Dialect) ([]string, error) {
	var query string
	switch dialect {
	case recordstore.PostgreSQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	case recordstore.MySQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	case recordstore.SQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	default:
		return nil, fmt.Errorf("unsupported database type %s", dialect)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
