// Package xmldsig assina e valida documentos XML com assinatura XML-DSig envelopada.
//
// A montagem do <ds:Signature> segue o mesmo encadeamento de namespaces do
// goxmldsig, de modo que a validação pelo ValidationContext do goxmldsig
// reproduza exatamente os digests calculados na assinatura.
package xmldsig

import (
	"github.com/lb-conn/xml-signer/application/ports"
)

// Signer não guarda estado: chave e certificado chegam a cada chamada,
// então uma única instância pode ser compartilhada entre requisições.
type Signer struct{}

var _ ports.XMLSigner = (*Signer)(nil)

// NewSigner cria o Signer.
func NewSigner() *Signer {
	return &Signer{}
}
