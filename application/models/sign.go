package models

import (
	"crypto/x509"
	"fmt"
	"strings"
	"time"
)

// Signature method names accepted in SignRequest.SignatureMethod.
const (
	SignatureMethodRSASHA256 = "RSA-SHA256"
	SignatureMethodRSASHA512 = "RSA-SHA512"
	SignatureMethodRSASHA1   = "RSA-SHA1"
)

// Canonicalization method URIs accepted in SignRequest.CanonicalizationMethod.
const (
	CanonicalizationExclusive             = "http://www.w3.org/2001/10/xml-exc-c14n#"
	CanonicalizationExclusiveWithComments = "http://www.w3.org/2001/10/xml-exc-c14n#WithComments"
	Canonicalization10                    = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	Canonicalization10WithComments        = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315#WithComments"
	Canonicalization11                    = "http://www.w3.org/2006/12/xml-c14n11"
	Canonicalization11WithComments        = "http://www.w3.org/2006/12/xml-c14n11#WithComments"
)

// Keystore format names.
const (
	FormatPKCS12 = "PKCS12"
	FormatJKS    = "JKS"
)

const (
	DefaultSignatureMethod        = SignatureMethodRSASHA256
	DefaultCanonicalizationMethod = CanonicalizationExclusive
)

var (
	SupportedSignatureMethods = []string{
		SignatureMethodRSASHA256,
		SignatureMethodRSASHA512,
		SignatureMethodRSASHA1,
	}

	SupportedCanonicalizationMethods = []string{
		CanonicalizationExclusive,
		CanonicalizationExclusiveWithComments,
		Canonicalization10,
		Canonicalization10WithComments,
		Canonicalization11,
		Canonicalization11WithComments,
	}

	SupportedKeystoreFormats = []string{FormatPKCS12, FormatJKS}
)

// IsSupportedSignatureMethod reports whether name is a known signature method (case-insensitive).
func IsSupportedSignatureMethod(name string) bool {
	for _, m := range SupportedSignatureMethods {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// IsSupportedCanonicalizationMethod reports whether uri is a known canonicalization algorithm.
func IsSupportedCanonicalizationMethod(uri string) bool {
	for _, m := range SupportedCanonicalizationMethods {
		if m == uri {
			return true
		}
	}
	return false
}

// SignRequest is the input of the Sign operation.
type SignRequest struct {
	XMLContent             string `json:"xmlContent"`
	CertificatePath        string `json:"certificatePath"`
	CertificatePassword    string `json:"certificatePassword,omitempty"`
	DevMode                bool   `json:"devMode"`
	KeyAlias               string `json:"keyAlias,omitempty"`
	SignatureMethod        string `json:"signatureMethod,omitempty"`
	CanonicalizationMethod string `json:"canonicalizationMethod,omitempty"`
}

// Validate checks the required fields.
func (r SignRequest) Validate() error {
	if strings.TrimSpace(r.XMLContent) == "" {
		return ValidationError("XML content is required")
	}
	if strings.TrimSpace(r.CertificatePath) == "" {
		return ValidationError("Certificate path is required")
	}
	return nil
}

// WithDefaults fills empty method selectors.
func (r SignRequest) WithDefaults(signatureMethod, canonicalizationMethod string) SignRequest {
	if r.SignatureMethod == "" {
		r.SignatureMethod = signatureMethod
	}
	if r.CanonicalizationMethod == "" {
		r.CanonicalizationMethod = canonicalizationMethod
	}
	return r
}

// String omits the password and the XML payload.
func (r SignRequest) String() string {
	return fmt.Sprintf("SignRequest{certificatePath='%s', devMode=%t, keyAlias='%s', signatureMethod='%s', canonicalizationMethod='%s'}",
		r.CertificatePath, r.DevMode, r.KeyAlias, r.SignatureMethod, r.CanonicalizationMethod)
}

// CertificateInfo describes the certificate used to sign.
type CertificateInfo struct {
	Subject      string    `json:"subject"`
	Issuer       string    `json:"issuer"`
	SerialNumber string    `json:"serialNumber"`
	NotBefore    time.Time `json:"notBefore"`
	NotAfter     time.Time `json:"notAfter"`
}

// NewCertificateInfo extracts the public metadata of cert.
func NewCertificateInfo(cert *x509.Certificate) *CertificateInfo {
	return &CertificateInfo{
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.String(),
		NotBefore:    cert.NotBefore.UTC(),
		NotAfter:     cert.NotAfter.UTC(),
	}
}

func (c *CertificateInfo) String() string {
	return fmt.Sprintf("Subject: %s, Issuer: %s, Valid from: %s to: %s",
		c.Subject, c.Issuer, c.NotBefore.Format(time.RFC3339), c.NotAfter.Format(time.RFC3339))
}

const (
	messageSignSuccess = "XML signed successfully"
	messageSignFailure = "Failed to sign XML"
)

// SignResult is the outcome of the Sign operation. SignedXML and CertificateInfo
// are set iff Success; Error and ErrorCode iff not.
type SignResult struct {
	Success         bool             `json:"success"`
	SignedXML       string           `json:"signedXml,omitempty"`
	Message         string           `json:"message"`
	CertificateInfo *CertificateInfo `json:"certificateInfo,omitempty"`
	Error           string           `json:"error,omitempty"`
	ErrorCode       ErrorKind        `json:"errorCode,omitempty"`
	Details         string           `json:"details,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}

// NewSuccessResult builds a successful SignResult.
func NewSuccessResult(signedXML string, info *CertificateInfo) *SignResult {
	return &SignResult{
		Success:         true,
		SignedXML:       signedXML,
		Message:         messageSignSuccess,
		CertificateInfo: info,
		Timestamp:       time.Now().UTC(),
	}
}

// NewFailureResult builds a failed SignResult from err.
func NewFailureResult(err error) *SignResult {
	signErr := AsSignError(err)
	return &SignResult{
		Success:   false,
		Message:   messageSignFailure,
		Error:     signErr.Error(),
		ErrorCode: signErr.Kind,
		Details:   signErr.Details,
		Timestamp: time.Now().UTC(),
	}
}
