package xmldsig

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	dsig "github.com/russellhaering/goxmldsig"
	"github.com/russellhaering/goxmldsig/etreeutils"

	"github.com/lb-conn/xml-signer/application/models"
	"github.com/lb-conn/xml-signer/application/ports"
)

const signaturePrefix = "ds"

// Sign assina um documento XML e insere um elemento <ds:Signature> enveloped
// (assinatura envelopada: a própria assinatura é inserida dentro do documento
// assinado) como último filho do elemento raiz. O SignedInfo tem uma única
// referência URI="" com os transforms enveloped-signature + canonicalização,
// digest SHA-256, e o KeyInfo carrega o certificado X.509.
func (s *Signer) Sign(ctx context.Context, xmlData []byte, key crypto.PrivateKey, cert *x509.Certificate, opts ports.SignOptions) ([]byte, error) {
	doc, err := parseDocument(xmlData)
	if err != nil {
		return nil, err
	}

	method, ok := LookupSignatureMethod(opts.SignatureMethod)
	if !ok {
		log.Ctx(ctx).Warn().Str("signature_method", opts.SignatureMethod).Msg("Unknown signature method, using RSA-SHA256")
		method, _ = LookupSignatureMethod(models.DefaultSignatureMethod)
	}

	c14nMethod := opts.CanonicalizationMethod
	if c14nMethod == "" {
		c14nMethod = models.DefaultCanonicalizationMethod
	}

	if err := signDocument(doc, key, cert, method, c14nMethod); err != nil {
		return nil, models.SigningError("Failed to sign XML document", err)
	}

	// \r no texto e \t, \n, \r em atributos como referências de caractere:
	// a releitura precisa ver os mesmos caracteres do digest.
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, models.SigningError("Failed to serialize signed XML", err)
	}

	log.Ctx(ctx).Debug().Str("signature_method", method.URI).Str("canonicalization_method", c14nMethod).Msg("Document signed")
	return out, nil
}

func signDocument(doc *etree.Document, key crypto.PrivateKey, cert *x509.Certificate, method SignatureMethod, c14nMethod string) error {
	if cert == nil {
		return errors.New("certificate is required")
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return errors.Errorf("signature method %s requires an RSA private key, got %T", method.Name, key)
	}
	if !rsaKey.PublicKey.Equal(cert.PublicKey) {
		return errors.New("private key does not match certificate public key")
	}

	canon, ok := NewCanonicalizer(c14nMethod)
	if !ok {
		return errors.Errorf("unsupported canonicalization method %q", c14nMethod)
	}

	root := doc.Root()

	// Transform enveloped-signature: o digest é calculado antes de anexar a
	// <ds:Signature>, o que equivale a removê-la na validação.
	rootCanon, err := canon.Canonicalize(root.Copy())
	if err != nil {
		return errors.Wrap(err, "failed to canonicalize root")
	}
	rootDigest := sha256.Sum256(rootCanon)

	signatureEl := root.CreateElement(signaturePrefix + ":" + dsig.SignatureTag)
	signatureEl.CreateAttr("xmlns:"+signaturePrefix, dsig.Namespace)

	signedInfo := signatureEl.CreateElement(qualified(dsig.SignedInfoTag))
	signedInfo.CreateElement(qualified(dsig.CanonicalizationMethodTag)).CreateAttr(dsig.AlgorithmAttr, c14nMethod)
	signedInfo.CreateElement(qualified(dsig.SignatureMethodTag)).CreateAttr(dsig.AlgorithmAttr, method.URI)

	reference := signedInfo.CreateElement(qualified(dsig.ReferenceTag))
	reference.CreateAttr(dsig.URIAttr, "")
	transforms := reference.CreateElement(qualified(dsig.TransformsTag))
	transforms.CreateElement(qualified(dsig.TransformTag)).CreateAttr(dsig.AlgorithmAttr, dsig.EnvelopedSignatureAltorithmId.String())
	transforms.CreateElement(qualified(dsig.TransformTag)).CreateAttr(dsig.AlgorithmAttr, c14nMethod)
	reference.CreateElement(qualified(dsig.DigestMethodTag)).CreateAttr(dsig.AlgorithmAttr, DigestMethodSHA256)
	reference.CreateElement(qualified(dsig.DigestValueTag)).SetText(base64.StdEncoding.EncodeToString(rootDigest[:]))

	// O SignedInfo é canonicalizado no contexto de namespaces final
	// (ancestrais da raiz, raiz, Signature), como na validação.
	rootNSCtx, err := etreeutils.NSBuildParentContext(root)
	if err != nil {
		return errors.Wrap(err, "failed to build namespace context")
	}
	elNSCtx, err := rootNSCtx.SubContext(root)
	if err != nil {
		return errors.Wrap(err, "failed to build namespace context")
	}
	sigNSCtx, err := elNSCtx.SubContext(signatureEl)
	if err != nil {
		return errors.Wrap(err, "failed to build namespace context")
	}
	detachedSignedInfo, err := etreeutils.NSDetatch(sigNSCtx, signedInfo)
	if err != nil {
		return errors.Wrap(err, "failed to detach SignedInfo")
	}
	siCanon, err := canon.Canonicalize(detachedSignedInfo)
	if err != nil {
		return errors.Wrap(err, "failed to canonicalize SignedInfo")
	}

	hasher := method.Hash.New()
	if _, err := hasher.Write(siCanon); err != nil {
		return errors.Wrap(err, "failed to hash SignedInfo")
	}
	sigBytes, err := rsa.SignPKCS1v15(rand.Reader, rsaKey, method.Hash, hasher.Sum(nil))
	if err != nil {
		return errors.Wrap(err, "failed to sign SignedInfo")
	}

	signatureEl.CreateElement(qualified(dsig.SignatureValueTag)).SetText(base64.StdEncoding.EncodeToString(sigBytes))

	keyInfo := signatureEl.CreateElement(qualified(dsig.KeyInfoTag))
	keyInfo.CreateElement(qualified(dsig.X509DataTag)).
		CreateElement(qualified(dsig.X509CertificateTag)).
		SetText(base64.StdEncoding.EncodeToString(cert.Raw))

	return nil
}

func qualified(tag string) string {
	return signaturePrefix + ":" + tag
}
