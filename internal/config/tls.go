package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// RedisTLS builds a *tls.Config for the Redis presence backend.
// Returns nil, nil if TLS is not enabled (plaintext mode).
func (c *Config) RedisTLS() (*tls.Config, error) {
	if !c.RedisTLSEnabled {
		return nil, nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if c.RedisTLSCert != "" || c.RedisTLSKey != "" {
		if c.RedisTLSCert == "" || c.RedisTLSKey == "" {
			return nil, errors.New("both REDIS_TLS_CERT and REDIS_TLS_KEY must be set")
		}
		cert, err := tls.LoadX509KeyPair(c.RedisTLSCert, c.RedisTLSKey)
		if err != nil {
			return nil, fmt.Errorf("load redis client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if c.RedisTLSCACert != "" {
		caPEM, err := os.ReadFile(c.RedisTLSCACert)
		if err != nil {
			return nil, fmt.Errorf("read redis CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("failed to parse redis CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	if c.RedisTLSServerName != "" {
		tlsConfig.ServerName = c.RedisTLSServerName
	}

	return tlsConfig, nil
}
