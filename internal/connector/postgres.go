package connector

import (
	"github.com/Maksumys/dbschema/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"net"
	"net/url"
	"strconv"
)

type postgresDialect struct{}

// pgx has no equivalent for these libpq settings.
var postgresUnsupportedSSL = map[string]bool{
	"sslcrl":         true,
	"sslcompression": true,
}

func (postgresDialect) sslKeys() []string {
	return []string{"sslmode", "sslcert", "sslkey", "sslrootcert", "sslcrl", "sslcompression"}
}

func (d postgresDialect) dialector(_ string, target models.Target) (gorm.Dialector, []string, error) {
	dsn, ignored := d.dsn(target)
	return postgres.New(postgres.Config{DSN: dsn}), ignored, nil
}

func (d postgresDialect) dsn(target models.Target) (string, []string) {
	query := url.Values{}
	var ignored []string
	for _, key := range d.sslKeys() {
		value, ok := target.Option(key)
		if !ok {
			continue
		}
		if postgresUnsupportedSSL[key] {
			ignored = append(ignored, key)
			continue
		}
		query.Set(key, value)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(target.User, target.Password),
		Host:     net.JoinHostPort(target.Host, strconv.Itoa(target.Port)),
		Path:     "/" + target.Database,
		RawQuery: query.Encode(),
	}
	return u.String(), ignored
}
