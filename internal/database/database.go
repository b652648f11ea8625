package database

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/config"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know yet.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Connect opens the journal database from DB_DRIVER / DB_DSN.
func Connect() (*sqlx.DB, error) {
	return Open(config.DBDriver(), config.DBDSN())
}

// Open accepts "pgx" for postgres or "sqlite".
func Open(driver, dsn string) (*sqlx.DB, error) {
	return sqlx.Connect(driver, dsn)
}
