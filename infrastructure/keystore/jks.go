package keystore

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"strings"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
	"github.com/pkg/errors"

	"github.com/lb-conn/xml-signer/application/models"
	"github.com/lb-conn/xml-signer/application/ports"
)

// JKSParser decodifica keystores Java (JKS) com keystore-go.
type JKSParser struct{}

func (JKSParser) Format() string { return models.FormatJKS }

// Parse valida a integridade do JKS com a senha. As chaves continuam cifradas
// até KeyPair. Somente entradas de chave privada são enumeradas, em ordem lexicográfica.
func (JKSParser) Parse(data []byte, password string) (ports.Keystore, error) {
	ks := keystore.New(keystore.WithOrderedAliases())
	if err := ks.Load(bytes.NewReader(data), []byte(password)); err != nil {
		return nil, errors.Wrap(err, "failed to decode JKS")
	}

	var aliases []string
	for _, alias := range ks.Aliases() {
		if ks.IsPrivateKeyEntry(alias) {
			aliases = append(aliases, alias)
		}
	}

	return &jksKeystore{ks: ks, aliases: aliases}, nil
}

type jksKeystore struct {
	ks      keystore.KeyStore
	aliases []string
}

func (k *jksKeystore) Format() string { return models.FormatJKS }

func (k *jksKeystore) Aliases() []string { return k.aliases }

// ContainsAlias compara sem diferenciar maiúsculas, como o JKS armazena os aliases.
func (k *jksKeystore) ContainsAlias(alias string) bool {
	for _, a := range k.aliases {
		if strings.EqualFold(a, alias) {
			return true
		}
	}
	return false
}

// KeyPair decifra a chave privada da entrada alias com password.
func (k *jksKeystore) KeyPair(alias, password string) (crypto.PrivateKey, *x509.Certificate, error) {
	entry, err := k.ks.GetPrivateKeyEntry(alias, []byte(password))
	if err != nil {
		if errors.Is(err, keystore.ErrEntryNotFound) {
			return nil, nil, errors.Wrapf(ErrAliasNotFound, "alias %q", alias)
		}
		return nil, nil, errors.Wrapf(err, "failed to recover key for alias %q", alias)
	}

	key, err := x509.ParsePKCS8PrivateKey(entry.PrivateKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse PKCS#8 private key")
	}

	if len(entry.CertificateChain) == 0 {
		return key, nil, nil
	}
	cert, err := x509.ParseCertificate(entry.CertificateChain[0].Content)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse certificate")
	}
	return key, cert, nil
}
