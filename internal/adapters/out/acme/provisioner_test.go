package acme

import (
	"context"
	"crypto/ecdsa"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/lego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sitectl/internal/domain"
)

func TestKeyTypeFor(t *testing.T) {
	tests := []struct {
		size     int
		expected certcrypto.KeyType
		wantErr  bool
	}{
		{size: 2048, expected: certcrypto.RSA2048},
		{size: 3072, expected: certcrypto.RSA3072},
		{size: 4096, expected: certcrypto.RSA4096},
		{size: 8192, expected: certcrypto.RSA8192},
		{size: 1024, wantErr: true},
		{size: 0, wantErr: true},
	}

	for _, tt := range tests {
		kt, err := keyTypeFor(tt.size)
		if tt.wantErr {
			assert.Error(t, err, tt.size)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.expected, kt)
	}
}

func TestLoadOrCreateAccountKey_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts", "ops_at_example.com.key")

	first, err := loadOrCreateAccountKey(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := loadOrCreateAccountKey(path)
	require.NoError(t, err)

	firstKey, ok := first.(*ecdsa.PrivateKey)
	require.True(t, ok)
	secondKey, ok := second.(*ecdsa.PrivateKey)
	require.True(t, ok)
	assert.True(t, firstKey.Equal(secondKey))
}

func TestLoadOrCreateAccountKey_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.key")
	require.NoError(t, os.WriteFile(path, []byte("not pem"), 0600))

	_, err := loadOrCreateAccountKey(path)
	assert.Error(t, err)
}

func TestWriteCertificate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "live", "example.com")

	err := writeCertificate(dir, &certificate.Resource{
		Domain:            "example.com",
		Certificate:       []byte("FULLCHAIN"),
		PrivateKey:        []byte("KEY"),
		IssuerCertificate: []byte("CHAIN"),
	})
	require.NoError(t, err)

	for name, want := range map[string]string{
		"fullchain.pem": "FULLCHAIN",
		"privkey.pem":   "KEY",
		"chain.pem":     "CHAIN",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}

	info, err := os.Stat(filepath.Join(dir, "privkey.pem"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWriteCertificate_Incomplete(t *testing.T) {
	err := writeCertificate(t.TempDir(), &certificate.Resource{Domain: "example.com"})
	assert.Error(t, err)
}

func TestProvisioner_DirectoryURL(t *testing.T) {
	p := NewProvisioner(Config{})
	assert.Equal(t, lego.LEDirectoryProduction, p.directoryURL(false))
	assert.Equal(t, lego.LEDirectoryStaging, p.directoryURL(true))

	p = NewProvisioner(Config{DirectoryURL: "https://acme.internal/directory"})
	assert.Equal(t, "https://acme.internal/directory", p.directoryURL(false))
}

func TestProvisioner_AccountKeyPath(t *testing.T) {
	p := NewProvisioner(Config{AccountDir: "/data/accounts"})

	assert.Equal(t, "/data/accounts/default.key", p.accountKeyPath(""))
	assert.Equal(t, "/data/accounts/ops_at_example.com.key", p.accountKeyPath("ops@example.com"))
}

func TestProvisioner_ObtainRejectsBadInput(t *testing.T) {
	p := NewProvisioner(Config{AccountDir: t.TempDir(), LiveDir: t.TempDir()})

	_, err := p.Obtain(context.Background(), domain.CertRequest{Domain: "not a domain", KeySize: 4096})
	assert.ErrorIs(t, err, domain.ErrInvalidDomain)

	_, err = p.Obtain(context.Background(), domain.CertRequest{Domain: "example.com", KeySize: 1000})
	assert.Error(t, err)
}
