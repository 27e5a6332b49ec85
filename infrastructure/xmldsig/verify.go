package xmldsig

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	dsig "github.com/russellhaering/goxmldsig"
)

// ErrSignatureNotFound é retornado quando o documento não contém <ds:Signature>.
var ErrSignatureNotFound = errors.New("signature element not found")

// Verify valida a assinatura envelopada usando somente o certificado embutido
// no próprio <ds:KeyInfo>. Cadeia de confiança, revogação e validade do
// certificado não são verificadas: o relógio da validação é fixado no
// NotBefore do certificado.
func (s *Signer) Verify(ctx context.Context, xmlData []byte) error {
	doc, err := parseDocument(xmlData)
	if err != nil {
		return err
	}
	root := doc.Root()

	// Encontra elemento Signature
	signatureEl := findSignatureElement(root)
	if signatureEl == nil {
		return ErrSignatureNotFound
	}

	store := NewCertificateStore()
	cert, err := store.AddFromKeyInfo(signatureEl)
	if err != nil {
		return errors.Wrap(err, "failed to extract certificate from KeyInfo")
	}

	validationCtx := dsig.NewDefaultValidationContext(store)
	validationCtx.Clock = dsig.NewFakeClockAt(cert.NotBefore)

	if _, err := validationCtx.Validate(root); err != nil {
		return errors.Wrap(err, "signature verification failed")
	}

	log.Ctx(ctx).Debug().Str("subject", cert.Subject.String()).Msg("Signature verified")
	return nil
}
