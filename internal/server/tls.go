package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/caddyserver/certmagic"
)

// CertMagicConfig configures automatic certificate management with CertMagic.
type CertMagicConfig struct {
	Domains    []string
	Email      string
	StorageDir string // optional; defaults to XDG or ~/.cache/medic/certmagic
	CA         string // optional; defaults to Let's Encrypt prod
}

// DefaultCertDir is where certificates live when tls.storage_dir is unset.
func DefaultCertDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "medic", "certmagic")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "medic", "certmagic")
}

// BuildCertMagicTLS provisions or loads certificates for the configured
// domains and returns a TLS config plus an HTTP handler that answers
// HTTP-01 challenges and redirects everything else to HTTPS.
func BuildCertMagicTLS(ctx context.Context, cfg CertMagicConfig) (*tls.Config, http.Handler, error) {
	if len(cfg.Domains) == 0 {
		return nil, nil, errors.New("at least one domain is required")
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = DefaultCertDir()
	}
	if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("cert storage: %w", err)
	}

	cm := certmagic.NewDefault()
	cm.Storage = &certmagic.FileStorage{Path: cfg.StorageDir}
	ca := cfg.CA
	if ca == "" {
		ca = certmagic.LetsEncryptProductionCA
	}
	issuer := certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:     ca,
		Email:  cfg.Email,
		Agreed: true,
	})
	cm.Issuers = []certmagic.Issuer{issuer}

	if err := cm.ManageSync(ctx, cfg.Domains); err != nil {
		return nil, nil, err
	}

	tlsConf := cm.TLSConfig()
	tlsConf.MinVersion = tls.VersionTLS12
	return tlsConf, issuer.HTTPChallengeHandler(http.HandlerFunc(redirectHTTPS)), nil
}

func redirectHTTPS(w http.ResponseWriter, r *http.Request) {
	target := "https://" + r.Host + r.URL.RequestURI()
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}
