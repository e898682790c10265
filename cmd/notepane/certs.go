package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/notepane/notepane/internal/errors"
)

// Output file names, matching TLS_CERT_FILE/TLS_KEY_FILE in local setups.
const (
	certFileName = "cert.pem"
	keyFileName  = "key.pem"
)

// certOptions controls self-signed certificate generation.
type certOptions struct {
	Dir   string
	Days  int
	Bits  int
	Force bool
}

// certOutput reports the written files.
type certOutput struct {
	CertFile string    `json:"cert_file"`
	KeyFile  string    `json:"key_file"`
	NotAfter time.Time `json:"not_after"`
}

// writeCerts generates an RSA key and a self-signed certificate for localhost.
func writeCerts(opts certOptions) (*certOutput, error) {
	if opts.Days <= 0 {
		return nil, errors.NewInvalidRequest("days must be positive")
	}
	if opts.Bits < 2048 {
		return nil, errors.NewInvalidRequest("bits must be at least 2048")
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}

	certPath := filepath.Join(opts.Dir, certFileName)
	keyPath := filepath.Join(opts.Dir, keyFileName)
	if !opts.Force {
		for _, p := range []string{certPath, keyPath} {
			if _, err := os.Stat(p); err == nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("%s already exists (use --force to overwrite)", p))
			}
		}
	}

	key, err := rsa.GenerateKey(rand.Reader, opts.Bits)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("generate key: %w", err))
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("generate serial: %w", err))
	}

	now := time.Now().UTC()
	name := pkix.Name{
		CommonName:   "localhost",
		Organization: []string{"notepane"},
	}
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               name,
		Issuer:                name,
		NotBefore:             now,
		NotAfter:              now.AddDate(0, 0, opts.Days),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("create certificate: %w", err))
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, errors.NewInternal(err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	// WriteFile keeps the mode of an existing file, so replace it instead.
	if err := os.Remove(keyPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.NewInternal(err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return nil, errors.NewInternal(err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &certOutput{CertFile: certPath, KeyFile: keyPath, NotAfter: tmpl.NotAfter}, nil
}
