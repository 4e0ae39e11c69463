package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"talos-hq/console/pkg/config"
)

// writeKeyPair writes a self-signed certificate and its key valid between
// notBefore and notAfter, returning both paths.
func writeKeyPair(t *testing.T, dir string, notBefore, notAfter time.Time) (certPath, keyPath string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "talos-tui"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	certPath = filepath.Join(dir, "client.pem")
	keyPath = filepath.Join(dir, "client-key.pem")
	writePEM(t, certPath, "CERTIFICATE", der)
	writePEM(t, keyPath, "EC PRIVATE KEY", keyDER)
	return certPath, keyPath
}

func writePEM(t *testing.T, path, blockType string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestClientConfig_ZeroValue(t *testing.T) {
	cfg, err := ClientConfig(config.TLSConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Error("expected nil config for zero TLS settings")
	}
}

func TestClientConfig_MinVersion(t *testing.T) {
	tests := []struct {
		version string
		want    uint16
	}{
		{"", 0x0303},
		{"1.2", 0x0303},
		{"1.3", 0x0304},
	}
	for _, tt := range tests {
		t.Run("v"+tt.version, func(t *testing.T) {
			cfg, err := ClientConfig(config.TLSConfig{MinVersion: tt.version, ServerName: "gateway"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.MinVersion != tt.want {
				t.Errorf("MinVersion = %#x, want %#x", cfg.MinVersion, tt.want)
			}
			if cfg.ServerName != "gateway" {
				t.Errorf("ServerName = %q", cfg.ServerName)
			}
		})
	}
}

func TestClientConfig_ClientCertificate(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	certPath, keyPath := writeKeyPair(t, dir, now.Add(-time.Hour), now.Add(365*24*time.Hour))

	cfg, err := ClientConfig(config.TLSConfig{CertFile: certPath, KeyFile: keyPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Fatalf("expected one client certificate, got %d", len(cfg.Certificates))
	}
	if msg := ExpiryWarning(cfg, now); msg != "" {
		t.Errorf("unexpected expiry warning: %s", msg)
	}
	if msg := ExpiryWarning(cfg, now.Add(350*24*time.Hour)); !strings.Contains(msg, "expires in") {
		t.Errorf("expected expiry warning near the end of validity, got %q", msg)
	}
}

func TestClientConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	expiredDir := filepath.Join(dir, "expired")
	if err := os.Mkdir(expiredDir, 0700); err != nil {
		t.Fatal(err)
	}
	expiredCert, expiredKey := writeKeyPair(t, expiredDir, now.Add(-48*time.Hour), now.Add(-24*time.Hour))

	garbage := filepath.Join(dir, "garbage.pem")
	if err := os.WriteFile(garbage, []byte("not a certificate"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     config.TLSConfig
		wantErr string
	}{
		{name: "missing CA file", cfg: config.TLSConfig{CAFile: filepath.Join(dir, "missing.pem")}, wantErr: "failed to read CA file"},
		{name: "CA file without certificates", cfg: config.TLSConfig{CAFile: garbage}, wantErr: "no certificates found"},
		{name: "cert without key", cfg: config.TLSConfig{CertFile: expiredCert}, wantErr: "set together"},
		{name: "unparseable key pair", cfg: config.TLSConfig{CertFile: garbage, KeyFile: garbage}, wantErr: "failed to load client certificate"},
		{name: "expired certificate", cfg: config.TLSConfig{CertFile: expiredCert, KeyFile: expiredKey}, wantErr: "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ClientConfig(tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClientConfig_TrustsCAFile(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	caPath := filepath.Join(t.TempDir(), "ca.pem")
	writePEM(t, caPath, "CERTIFICATE", server.Certificate().Raw)

	tlsConfig, err := ClientConfig(config.TLSConfig{CAFile: caPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request with trusted CA failed: %v", err)
	}
	resp.Body.Close()

	untrusted := &http.Client{Transport: &http.Transport{}}
	if resp, err := untrusted.Get(server.URL); err == nil {
		resp.Body.Close()
		t.Error("expected verification failure without the CA file")
	}
}

func TestValidateCertificate_Nil(t *testing.T) {
	if err := ValidateCertificate(nil); err == nil {
		t.Error("expected error for nil certificate")
	}
}

func TestExpiryWarning_NoCertificate(t *testing.T) {
	if msg := ExpiryWarning(nil, time.Now()); msg != "" {
		t.Errorf("unexpected warning %q", msg)
	}
}
