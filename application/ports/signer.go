package ports

import (
	"context"
	"crypto"
	"crypto/x509"
	"time"
)

// SignOptions selects the algorithms of an enveloped signature.
type SignOptions struct {
	SignatureMethod        string
	CanonicalizationMethod string
}

// XMLSigner produces and checks enveloped XML-DSig signatures.
type XMLSigner interface {
	Sign(ctx context.Context, xmlData []byte, key crypto.PrivateKey, cert *x509.Certificate, opts SignOptions) ([]byte, error)
	Verify(ctx context.Context, xmlData []byte) error
}

// Keystore is a loaded key container (PKCS#12 or JKS).
type Keystore interface {
	// Format returns the container format that parsed successfully.
	Format() string

	// Aliases returns the signing entries in the container's enumeration order.
	Aliases() []string

	ContainsAlias(alias string) bool

	// KeyPair returns the private key and leaf certificate stored under alias.
	// Either value may be nil when the entry lacks it.
	KeyPair(alias, password string) (crypto.PrivateKey, *x509.Certificate, error)
}

// KeystoreLoader opens a keystore file.
type KeystoreLoader interface {
	Load(ctx context.Context, path, password string) (Keystore, error)
}

// MetricsRecorder records signing outcomes.
type MetricsRecorder interface {
	// RecordSign records a Sign call; errorCode is empty on success.
	RecordSign(errorCode string, duration time.Duration)

	RecordVerify(valid bool)

	RecordKeystoreLoad(format string)
}
