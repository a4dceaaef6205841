package ledger

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
)

// driverFor maps a configured provider to a registered database/sql driver, its DSN
// and the placeholder style the driver expects.
func driverFor(provider, url string) (driver, dsn string, placeholder squirrel.PlaceholderFormat, err error) {
	switch provider {
	case "postgresql", "postgres":
		return "pgx", url, squirrel.Dollar, nil
	case "mysql":
		dsn, err := mysqlDSN(url)
		if err != nil {
			return "", "", nil, err
		}
		return "mysql", dsn, squirrel.Question, nil
	case "sqlite", "sqlite3":
		return "sqlite3", sqliteDSN(url), squirrel.Question, nil
	default:
		return "", "", nil, fmt.Errorf("unsupported ledger provider: %s", provider)
	}
}

func sqliteDSN(url string) string {
	path := strings.TrimPrefix(url, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if !strings.Contains(path, "?") {
		path += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	return "file:" + path
}

// mysqlDSN accepts either a native DSN or a mysql:// URL and forces parseTime so
// TIMESTAMP columns scan into time.Time.
func mysqlDSN(url string) (string, error) {
	dsn := url
	if strings.HasPrefix(url, "mysql://") {
		dsn = strings.TrimPrefix(url, "mysql://")

		atIndex := strings.LastIndex(dsn, "@")
		if atIndex > 0 {
			credentials := dsn[:atIndex]
			remainder := dsn[atIndex+1:]

			if slashIndex := strings.Index(remainder, "/"); slashIndex > 0 {
				hostPort := remainder[:slashIndex]
				dbAndParams := remainder[slashIndex+1:]
				dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=disable", "tls=false")
				dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=require", "tls=skip-verify")
				dsn = fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
			}
		}
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql DSN: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
