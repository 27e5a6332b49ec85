// Package keystores gera keystores PKCS#12 e JKS para testes.
//
// O arquivo testdata/test.p12 foi gerado com o openssl porque o go-pkcs12 não
// grava o atributo friendlyName:
//
//	openssl pkcs12 -export -inkey key.pem -in cert.pem -name test \
//	  -passout pass:changeit -keypbe PBE-SHA1-3DES -certpbe PBE-SHA1-3DES \
//	  -macalg sha1 -out test.p12
package keystores

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
	"software.sslmate.com/src/go-pkcs12"
)

const (
	// Password protege todos os keystores gerados e o testdata/test.p12.
	Password = "changeit"

	// FriendlyAlias é o friendlyName gravado em testdata/test.p12.
	FriendlyAlias = "test"
)

// Identity é um par chave/certificado autoassinado.
type Identity struct {
	Key         crypto.Signer
	Certificate *x509.Certificate
}

// NewIdentity cria uma identidade RSA 2048 autoassinada.
func NewIdentity(t testing.TB, commonName string) *Identity {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return &Identity{Key: key, Certificate: selfSign(t, commonName, key)}
}

// NewECDSAIdentity cria uma identidade P-256, útil para exercitar chaves não RSA.
func NewECDSAIdentity(t testing.TB, commonName string) *Identity {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate ECDSA key: %v", err)
	}
	return &Identity{Key: key, Certificate: selfSign(t, commonName, key)}
}

func selfSign(t testing.TB, commonName string, key crypto.Signer) *x509.Certificate {
	t.Helper()

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		t.Fatalf("failed to generate serial number: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{"ICP-Brasil Teste"},
			Country:      []string{"BR"},
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, key.Public(), key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse certificate: %v", err)
	}
	return cert
}

// WritePKCS12 grava a identidade num .p12 temporário e retorna o caminho.
func WritePKCS12(t testing.TB, id *Identity, password string) string {
	t.Helper()

	data, err := pkcs12.Modern.Encode(id.Key, id.Certificate, nil, password)
	if err != nil {
		t.Fatalf("failed to encode PKCS12: %v", err)
	}
	return writeTemp(t, "keystore.p12", data)
}

// JKSEntry é uma entrada de chave privada de um JKS gerado.
type JKSEntry struct {
	Alias    string
	Identity *Identity
}

// WriteJKS grava um JKS temporário com uma entrada de chave privada por alias.
// Entradas e keystore usam a mesma senha.
func WriteJKS(t testing.TB, password string, entries ...JKSEntry) string {
	t.Helper()

	ks := keystore.New()
	for _, entry := range entries {
		keyDER, err := x509.MarshalPKCS8PrivateKey(entry.Identity.Key)
		if err != nil {
			t.Fatalf("failed to marshal private key: %v", err)
		}
		err = ks.SetPrivateKeyEntry(entry.Alias, keystore.PrivateKeyEntry{
			CreationTime: time.Now(),
			PrivateKey:   keyDER,
			CertificateChain: []keystore.Certificate{{
				Type:    "X509",
				Content: entry.Identity.Certificate.Raw,
			}},
		}, []byte(password))
		if err != nil {
			t.Fatalf("failed to set JKS entry %q: %v", entry.Alias, err)
		}
	}
	return storeJKS(t, ks, password)
}

// WriteTrustedOnlyJKS grava um JKS que contém apenas um certificado confiável,
// sem nenhuma entrada de chave privada.
func WriteTrustedOnlyJKS(t testing.TB, password string, id *Identity) string {
	t.Helper()

	ks := keystore.New()
	err := ks.SetTrustedCertificateEntry("ca", keystore.TrustedCertificateEntry{
		CreationTime: time.Now(),
		Certificate: keystore.Certificate{
			Type:    "X509",
			Content: id.Certificate.Raw,
		},
	})
	if err != nil {
		t.Fatalf("failed to set trusted certificate entry: %v", err)
	}
	return storeJKS(t, ks, password)
}

func storeJKS(t testing.TB, ks keystore.KeyStore, password string) string {
	t.Helper()

	var buf bytes.Buffer
	if err := ks.Store(&buf, []byte(password)); err != nil {
		t.Fatalf("failed to store JKS: %v", err)
	}
	return writeTemp(t, "keystore.jks", buf.Bytes())
}

// WriteFile grava bytes arbitrários num arquivo temporário.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	return writeTemp(t, name, data)
}

// ReadFile lê um keystore gerado, para regravá-lo com outro nome.
func ReadFile(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return data
}

func writeTemp(t testing.TB, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// FriendlyPKCS12Path retorna o caminho de testdata/test.p12, cujo alias é FriendlyAlias.
func FriendlyPKCS12Path(t testing.TB) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve fixture directory")
	}
	return filepath.Join(filepath.Dir(file), "testdata", "test.p12")
}
