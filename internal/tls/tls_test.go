package tls

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/loykin/folderedit/internal/config"
)

func TestSetupTLS_Disabled(t *testing.T) {
	c, err := SetupTLS(config.ServerConfig{})
	if err != nil || c != nil {
		t.Fatalf("expected nil config when TLS disabled, got %v, %v", c, err)
	}
}

func TestSetupTLS_AutoGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	c, err := SetupTLS(config.ServerConfig{
		TLSMinVersion: "1.2",
		TLS:           &config.TLSConfig{Enabled: true, Dir: dir, AutoGenerate: true},
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if c.MinVersion != tls.VersionTLS12 || c.MaxVersion != tls.VersionTLS13 {
		t.Fatalf("unexpected versions: %x-%x", c.MinVersion, c.MaxVersion)
	}
	for _, f := range []string{tlsCrt, tlsKey, tlsCaCrt} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Fatalf("%s not generated: %v", f, err)
		}
	}
	cert, err := c.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil || cert == nil {
		t.Fatalf("load generated certificate: %v", err)
	}
}

func TestSetupTLS_NoMaterial(t *testing.T) {
	if _, err := SetupTLS(config.ServerConfig{TLS: &config.TLSConfig{Enabled: true}}); err == nil {
		t.Fatalf("expected error without cert files or dir")
	}
}

func TestSafeReadFile_RejectsEscape(t *testing.T) {
	base := t.TempDir()
	if _, err := safeReadFile(base, filepath.Join(base, "..", "etc", "passwd")); err == nil {
		t.Fatalf("expected path escape to be rejected")
	}
}
