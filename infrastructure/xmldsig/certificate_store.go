package xmldsig

import (
	"crypto/x509"
	"encoding/base64"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
	dsig "github.com/russellhaering/goxmldsig"
)

// CertificateStore representa um repositório de certificados confiáveis para uma validação.
// Implementa dsig.X509CertificateStore.
type CertificateStore struct {
	certificates []*x509.Certificate
}

var _ dsig.X509CertificateStore = (*CertificateStore)(nil)

// NewCertificateStore cria um novo repositório de certificados
func NewCertificateStore() *CertificateStore {
	return &CertificateStore{}
}

// AddCertificate adiciona um certificado ao repositório
func (cs *CertificateStore) AddCertificate(cert *x509.Certificate) {
	cs.certificates = append(cs.certificates, cert)
}

// Certificates retorna uma cópia dos certificados na ordem de inserção.
func (cs *CertificateStore) Certificates() ([]*x509.Certificate, error) {
	return append([]*x509.Certificate(nil), cs.certificates...), nil
}

// AddFromKeyInfo extrai o certificado embutido em <ds:KeyInfo>/<ds:X509Data>/<ds:X509Certificate>
// do elemento Signature e o adiciona ao repositório.
func (cs *CertificateStore) AddFromKeyInfo(signature *etree.Element) (*x509.Certificate, error) {
	keyInfo := findChildDSig(signature, dsig.KeyInfoTag)
	if keyInfo == nil {
		return nil, errors.New("KeyInfo not found in Signature")
	}
	x509Data := findChildDSig(keyInfo, dsig.X509DataTag)
	if x509Data == nil {
		return nil, errors.New("X509Data not found in KeyInfo")
	}
	certEl := findChildDSig(x509Data, dsig.X509CertificateTag)
	if certEl == nil {
		return nil, errors.New("X509Certificate not found in KeyInfo")
	}

	der, err := base64.StdEncoding.DecodeString(stripWhitespace(certEl.Text()))
	if err != nil {
		return nil, errors.Wrap(err, "X509Certificate is not valid base64")
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse X509Certificate")
	}

	cs.AddCertificate(cert)
	return cert, nil
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
