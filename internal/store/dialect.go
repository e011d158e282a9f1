package store

import (
	"database/sql"
	"database/sql/driver"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/ngrok/sqlmw"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations
var migrationsFS embed.FS

// dialect captures what differs between the supported databases.
type dialect struct {
	name         string // config name
	baseDriver   string // registered database/sql driver
	gooseDialect string
	migrations   string
	positional   bool // $1 placeholders instead of ?
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name:         DriverSQLite,
		baseDriver:   "sqlite",
		gooseDialect: "sqlite3",
		migrations:   "migrations/sqlite",
	},
	DriverPostgres: {
		name:         DriverPostgres,
		baseDriver:   "pgx",
		gooseDialect: "postgres",
		migrations:   "migrations/postgres",
		positional:   true,
	},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
	return d, nil
}

// instrumentedName is the driver name the metric-wrapped driver is
// registered under.
func (d dialect) instrumentedName() string {
	return d.baseDriver + "-instrumented"
}

var registerOnce sync.Map // dialect name -> *sync.Once

// register wraps the base driver with the metric interceptor, once per
// process.
func (d dialect) register() error {
	v, _ := registerOnce.LoadOrStore(d.name, new(sync.Once))
	var err error
	v.(*sync.Once).Do(func() {
		var base driver.Driver
		base, err = baseDriver(d.baseDriver)
		if err != nil {
			return
		}
		sql.Register(d.instrumentedName(), sqlmw.Driver(base, &metricInterceptor{}))
	})
	return err
}

// baseDriver returns the driver registered under name without connecting.
func baseDriver(name string) (driver.Driver, error) {
	db, err := sql.Open(name, "")
	if err != nil {
		return nil, fmt.Errorf("looking up %s driver: %w", name, err)
	}
	defer db.Close()
	return db.Driver(), nil
}

// dsn adds the pragmas the store relies on to a SQLite path.
func (d dialect) dsn(raw string) string {
	if d.name != DriverSQLite {
		return raw
	}
	if strings.Contains(raw, "_pragma=") {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// rebind rewrites ? placeholders for databases that use $n.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// gooseMu serializes migrations; goose keeps its base FS and dialect in
// package state.
var gooseMu sync.Mutex

func (d dialect) migrate(db *sql.DB, logger *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(&gooseLogger{logger: logger})
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(d.gooseDialect); err != nil {
		return err
	}
	return goose.Up(db, d.migrations)
}

// gooseLogger implements goose.Logger on top of slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
	os.Exit(1)
}
