package ygggo_session

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

// SSLMode is the ssl-mode query parameter of a mysql:// URI.
type SSLMode string

const (
	SSLDisabled       SSLMode = "DISABLED"
	SSLPreferred      SSLMode = "PREFERRED"
	SSLRequired       SSLMode = "REQUIRED"
	SSLVerifyCA       SSLMode = "VERIFY_CA"
	SSLVerifyIdentity SSLMode = "VERIFY_IDENTITY"
)

// driverTLS maps each mode to the driver's tls parameter.
var driverTLS = map[SSLMode]string{
	SSLDisabled:       "false",
	SSLPreferred:      "preferred",
	SSLRequired:       "skip-verify",
	SSLVerifyCA:       "true",
	SSLVerifyIdentity: "true",
}

// parseSSLMode accepts any letter case and both '-' and '_'. An empty value
// yields an empty mode.
func parseSSLMode(v string) (SSLMode, error) {
	if v == "" {
		return "", nil
	}
	mode := SSLMode(strings.ReplaceAll(strings.ToUpper(v), "-", "_"))
	if _, ok := driverTLS[mode]; !ok {
		return "", fmt.Errorf("invalid ssl-mode %q in connection uri", v)
	}
	return mode, nil
}

// urlConfig builds the driver config for a mysql:// URI. Only the TLS
// parameters are read here; the rest arrives through the resolved fields.
func (o *ConnectionOptions) urlConfig() (*mysql.Config, error) {
	u, err := url.Parse(o.URI)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	mode, err := parseSSLMode(q.Get("ssl-mode"))
	if err != nil {
		return nil, err
	}
	ca, cert, key := q.Get("ssl-ca"), q.Get("ssl-cert"), q.Get("ssl-key")
	// a CA file without a mode asks for verification, as the mysql client does
	if mode == "" && ca != "" {
		mode = SSLVerifyCA
	}

	cfg := mysql.NewConfig()
	if mode == "" {
		return cfg, nil
	}
	if mode == SSLDisabled || (ca == "" && cert == "") {
		cfg.TLSConfig = driverTLS[mode]
		return cfg, nil
	}
	tc, err := o.clientTLS(mode, ca, cert, key)
	if err != nil {
		return nil, err
	}
	cfg.TLS = tc
	cfg.AllowFallbackToPlaintext = mode == SSLPreferred
	return cfg, nil
}

// clientTLS builds a tls.Config from certificate files.
func (o *ConnectionOptions) clientTLS(mode SSLMode, ca, cert, key string) (*tls.Config, error) {
	tc := &tls.Config{}
	var roots *x509.CertPool
	if ca != "" {
		pem, err := os.ReadFile(ca)
		if err != nil {
			return nil, fmt.Errorf("read ssl-ca: %w", err)
		}
		roots = x509.NewCertPool()
		if !roots.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("ssl-ca %s holds no PEM certificate", ca)
		}
	}
	if cert != "" || key != "" {
		pair, err := tls.LoadX509KeyPair(cert, key)
		if err != nil {
			return nil, fmt.Errorf("load ssl-cert: %w", err)
		}
		tc.Certificates = []tls.Certificate{pair}
	}

	switch mode {
	case SSLVerifyIdentity:
		tc.RootCAs = roots
		tc.ServerName = o.Host
	case SSLVerifyCA:
		// the chain is checked, the host name is not
		tc.InsecureSkipVerify = true
		tc.VerifyConnection = verifyChain(roots)
	default:
		tc.InsecureSkipVerify = true
	}
	return tc, nil
}

func verifyChain(roots *x509.CertPool) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		if len(cs.PeerCertificates) == 0 {
			return errors.New("server sent no certificate")
		}
		opts := x509.VerifyOptions{Roots: roots, Intermediates: x509.NewCertPool()}
		for _, c := range cs.PeerCertificates[1:] {
			opts.Intermediates.AddCert(c)
		}
		_, err := cs.PeerCertificates[0].Verify(opts)
		return err
	}
}
