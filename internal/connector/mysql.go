package connector

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"github.com/Maksumys/dbschema/internal/models"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"net"
	"os"
	"path/filepath"
	"strconv"
)

type mysqlDialect struct{}

func (mysqlDialect) sslKeys() []string {
	return []string{"ssl_ca", "ssl_capath", "ssl_cert", "ssl_key", "ssl_cipher", "ssl_check_hostname"}
}

func (d mysqlDialect) dialector(tag string, target models.Target) (gorm.Dialector, []string, error) {
	cfg, ignored, err := d.config(tag, target)
	if err != nil {
		return nil, nil, err
	}
	return mysql.New(mysql.Config{DSN: cfg.FormatDSN(), DSNConfig: cfg}), ignored, nil
}

func (d mysqlDialect) config(tag string, target models.Target) (*mysqldriver.Config, []string, error) {
	cfg := mysqldriver.NewConfig()
	cfg.User = target.User
	cfg.Passwd = target.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(target.Host, strconv.Itoa(target.Port))
	cfg.DBName = target.Database
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	var ignored []string
	if _, ok := target.Option("ssl_cipher"); ok {
		ignored = append(ignored, "ssl_cipher")
	}

	tlsConfig, err := d.tlsConfig(target)
	if err != nil {
		return nil, nil, err
	}
	if tlsConfig != nil {
		name := "dbschema-" + tag
		if err = mysqldriver.RegisterTLSConfig(name, tlsConfig); err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", models.ErrConfig, tag, err)
		}
		cfg.TLSConfig = name
	}

	return cfg, ignored, nil
}

// tlsConfig returns nil when the target carries no usable SSL option.
func (d mysqlDialect) tlsConfig(target models.Target) (*tls.Config, error) {
	ca, hasCA := target.Option("ssl_ca")
	caPath, hasCAPath := target.Option("ssl_capath")
	cert, hasCert := target.Option("ssl_cert")
	key, hasKey := target.Option("ssl_key")
	checkHostname, hasCheck := target.Option("ssl_check_hostname")

	if !hasCA && !hasCAPath && !hasCert && !hasKey && !hasCheck {
		return nil, nil
	}

	cfg := &tls.Config{ServerName: target.Host}

	if hasCA || hasCAPath {
		pool := x509.NewCertPool()
		files := make([]string, 0)
		if hasCA {
			files = append(files, ca)
		}
		if hasCAPath {
			matches, err := filepath.Glob(filepath.Join(caPath, "*.pem"))
			if err != nil {
				return nil, fmt.Errorf("%w: ssl_capath: %v", models.ErrConfig, err)
			}
			files = append(files, matches...)
		}
		for _, file := range files {
			pem, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("%w: read CA %s: %v", models.ErrConfig, file, err)
			}
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("%w: no certificates in %s", models.ErrConfig, file)
			}
		}
		cfg.RootCAs = pool
	}

	if hasCert != hasKey {
		return nil, fmt.Errorf("%w: ssl_cert and ssl_key must be set together", models.ErrConfig)
	}
	if hasCert {
		pair, err := tls.LoadX509KeyPair(cert, key)
		if err != nil {
			return nil, fmt.Errorf("%w: client certificate: %v", models.ErrConfig, err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	if hasCheck {
		verify, err := strconv.ParseBool(checkHostname)
		if err != nil {
			return nil, fmt.Errorf("%w: ssl_check_hostname: %v", models.ErrConfig, err)
		}
		cfg.InsecureSkipVerify = !verify
	}

	return cfg, nil
}
