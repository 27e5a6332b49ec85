package xmldsig

import (
	"crypto"
	_ "crypto/sha1" // registra SHA-1 para RSA-SHA1
	_ "crypto/sha256"
	_ "crypto/sha512"
	"strings"

	dsig "github.com/russellhaering/goxmldsig"

	"github.com/lb-conn/xml-signer/application/models"
)

// DigestMethodSHA256 é o único algoritmo de digest usado nas referências.
const DigestMethodSHA256 = "http://www.w3.org/2001/04/xmlenc#sha256"

// SignatureMethod associa o nome aceito na requisição ao URI XML-DSig e ao hash.
type SignatureMethod struct {
	Name string
	URI  string
	Hash crypto.Hash
}

var signatureMethods = map[string]SignatureMethod{
	models.SignatureMethodRSASHA256: {Name: models.SignatureMethodRSASHA256, URI: dsig.RSASHA256SignatureMethod, Hash: crypto.SHA256},
	models.SignatureMethodRSASHA512: {Name: models.SignatureMethodRSASHA512, URI: dsig.RSASHA512SignatureMethod, Hash: crypto.SHA512},
	models.SignatureMethodRSASHA1:   {Name: models.SignatureMethodRSASHA1, URI: dsig.RSASHA1SignatureMethod, Hash: crypto.SHA1},
}

// LookupSignatureMethod resolve name sem diferenciar maiúsculas.
// Vazio resolve para RSA-SHA256; nomes desconhecidos retornam ok=false.
func LookupSignatureMethod(name string) (SignatureMethod, bool) {
	if strings.TrimSpace(name) == "" {
		return signatureMethods[models.DefaultSignatureMethod], true
	}
	m, ok := signatureMethods[strings.ToUpper(strings.TrimSpace(name))]
	return m, ok
}

// NewCanonicalizer retorna o canonicalizador goxmldsig para o URI informado.
func NewCanonicalizer(uri string) (dsig.Canonicalizer, bool) {
	switch uri {
	case models.CanonicalizationExclusive:
		return dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList(""), true
	case models.CanonicalizationExclusiveWithComments:
		return dsig.MakeC14N10ExclusiveWithCommentsCanonicalizerWithPrefixList(""), true
	case models.Canonicalization10:
		return dsig.MakeC14N10RecCanonicalizer(), true
	case models.Canonicalization10WithComments:
		return dsig.MakeC14N10WithCommentsCanonicalizer(), true
	case models.Canonicalization11:
		return dsig.MakeC14N11Canonicalizer(), true
	case models.Canonicalization11WithComments:
		return dsig.MakeC14N11WithCommentsCanonicalizer(), true
	default:
		return nil, false
	}
}
