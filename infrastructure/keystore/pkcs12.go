package keystore

import (
	"crypto"
	"crypto/x509"

	"github.com/pkg/errors"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/lb-conn/xml-signer/application/models"
	"github.com/lb-conn/xml-signer/application/ports"
)

// DefaultPKCS12Alias é usado quando o PKCS#12 não traz o atributo friendlyName.
const DefaultPKCS12Alias = "1"

// ErrAliasNotFound é retornado quando o alias pedido não existe no keystore.
var ErrAliasNotFound = errors.New("alias not found in keystore")

// PKCS12Parser decodifica arquivos PKCS#12 (.p12/.pfx).
type PKCS12Parser struct{}

func (PKCS12Parser) Format() string { return models.FormatPKCS12 }

// Parse decodifica o PKCS#12 com go-pkcs12. O arquivo deve conter exatamente
// uma chave privada; os certificados de CA restantes formam a cadeia.
func (PKCS12Parser) Parse(data []byte, password string) (ports.Keystore, error) {
	key, cert, caCerts, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode PKCS#12")
	}

	chain := make([]*x509.Certificate, 0, 1+len(caCerts))
	if cert != nil {
		chain = append(chain, cert)
	}
	chain = append(chain, caCerts...)

	return &pkcs12Keystore{
		alias: pkcs12Alias(data, password),
		key:   key,
		chain: chain,
	}, nil
}

// pkcs12Alias lê o friendlyName dos safe bags. DecodeChain não expõe os
// atributos dos bags, então o conteúdo é decodificado de novo via ToPEM.
func pkcs12Alias(data []byte, password string) string {
	blocks, err := pkcs12.ToPEM(data, password) //nolint:staticcheck // only bag attributes are read
	if err != nil {
		return DefaultPKCS12Alias
	}

	var certName string
	for _, block := range blocks {
		name := block.Headers["friendlyName"]
		if name == "" {
			continue
		}
		switch block.Type {
		case "PRIVATE KEY", "EC PRIVATE KEY":
			return name
		case "CERTIFICATE":
			if certName == "" {
				certName = name
			}
		}
	}
	if certName != "" {
		return certName
	}
	return DefaultPKCS12Alias
}

type pkcs12Keystore struct {
	alias string
	key   crypto.PrivateKey
	chain []*x509.Certificate
}

func (k *pkcs12Keystore) Format() string { return models.FormatPKCS12 }

func (k *pkcs12Keystore) Aliases() []string { return []string{k.alias} }

func (k *pkcs12Keystore) ContainsAlias(alias string) bool { return alias == k.alias }

// KeyPair ignora a senha: o PKCS#12 já foi decifrado em Parse.
func (k *pkcs12Keystore) KeyPair(alias, _ string) (crypto.PrivateKey, *x509.Certificate, error) {
	if !k.ContainsAlias(alias) {
		return nil, nil, errors.Wrapf(ErrAliasNotFound, "alias %q", alias)
	}
	var cert *x509.Certificate
	if len(k.chain) > 0 {
		cert = k.chain[0]
	}
	return k.key, cert, nil
}
