package registry

// Database driver imports for side-effect registration with database/sql.
// modernc.org/sqlite is the default, pure-Go backend; the other two let a
// deployment point the registry at a shared MySQL or Postgres instance
// instead.
import (
	_ "github.com/go-sql-driver/mysql" // MySQL driver, dispatched for dsn scheme "mysql://"
	_ "github.com/lib/pq"              // PostgreSQL driver, dispatched for dsn scheme "postgres://"
	_ "modernc.org/sqlite"             // SQLite driver, dispatched for dsn scheme "sqlite://" (default)
)
