package models_test

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lb-conn/xml-signer/application/models"
)

func TestSignRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.SignRequest
		wantErr string
	}{
		{
			name: "valid",
			req:  models.SignRequest{XMLContent: "<a/>", CertificatePath: "/certs/a.p12"},
		},
		{
			name:    "blank xml",
			req:     models.SignRequest{XMLContent: "  ", CertificatePath: "/certs/a.p12"},
			wantErr: "XML content is required",
		},
		{
			name:    "missing path",
			req:     models.SignRequest{XMLContent: "<a/>"},
			wantErr: "Certificate path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, models.KindValidation, models.KindOf(err))
		})
	}
}

func TestSignRequest_WithDefaults(t *testing.T) {
	req := models.SignRequest{}.WithDefaults(models.DefaultSignatureMethod, models.DefaultCanonicalizationMethod)
	assert.Equal(t, models.SignatureMethodRSASHA256, req.SignatureMethod)
	assert.Equal(t, models.CanonicalizationExclusive, req.CanonicalizationMethod)

	req = models.SignRequest{SignatureMethod: "RSA-SHA1", CanonicalizationMethod: models.Canonicalization10}.
		WithDefaults(models.DefaultSignatureMethod, models.DefaultCanonicalizationMethod)
	assert.Equal(t, "RSA-SHA1", req.SignatureMethod)
	assert.Equal(t, models.Canonicalization10, req.CanonicalizationMethod)
}

func TestSignRequest_StringHidesSecrets(t *testing.T) {
	req := models.SignRequest{
		XMLContent:          "<secret>payload</secret>",
		CertificatePath:     "/certs/a.p12",
		CertificatePassword: "s3cr3t",
		KeyAlias:            "signer",
	}

	s := req.String()
	assert.Contains(t, s, "/certs/a.p12")
	assert.Contains(t, s, "signer")
	assert.NotContains(t, s, "s3cr3t")
	assert.NotContains(t, s, "payload")
}

func TestSignRequest_JSON(t *testing.T) {
	var req models.SignRequest
	err := json.Unmarshal([]byte(`{
		"xmlContent": "<root/>",
		"certificatePath": "/certs/a.jks",
		"certificatePassword": "changeit",
		"devMode": true,
		"keyAlias": "test",
		"signatureMethod": "RSA-SHA512",
		"canonicalizationMethod": "http://www.w3.org/2006/12/xml-c14n11"
	}`), &req)
	require.NoError(t, err)

	assert.Equal(t, models.SignRequest{
		XMLContent:             "<root/>",
		CertificatePath:        "/certs/a.jks",
		CertificatePassword:    "changeit",
		DevMode:                true,
		KeyAlias:               "test",
		SignatureMethod:        models.SignatureMethodRSASHA512,
		CanonicalizationMethod: models.Canonicalization11,
	}, req)
}

func TestIsSupportedSignatureMethod(t *testing.T) {
	assert.True(t, models.IsSupportedSignatureMethod("RSA-SHA256"))
	assert.True(t, models.IsSupportedSignatureMethod("rsa-sha512"))
	assert.False(t, models.IsSupportedSignatureMethod("ECDSA-SHA256"))
	assert.False(t, models.IsSupportedSignatureMethod(""))
}

func TestIsSupportedCanonicalizationMethod(t *testing.T) {
	for _, uri := range models.SupportedCanonicalizationMethods {
		assert.True(t, models.IsSupportedCanonicalizationMethod(uri), uri)
	}
	assert.False(t, models.IsSupportedCanonicalizationMethod("urn:unknown"))
}

func TestCertificateInfo(t *testing.T) {
	notBefore := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	notAfter := notBefore.AddDate(1, 0, 0)
	cert := &x509.Certificate{
		Subject:      pkix.Name{CommonName: "signer", Country: []string{"BR"}},
		Issuer:       pkix.Name{CommonName: "AC Teste"},
		SerialNumber: big.NewInt(42),
		NotBefore:    notBefore,
		NotAfter:     notAfter,
	}

	info := models.NewCertificateInfo(cert)
	assert.Equal(t, "CN=signer,C=BR", info.Subject)
	assert.Equal(t, "CN=AC Teste", info.Issuer)
	assert.Equal(t, "42", info.SerialNumber)
	assert.Equal(t,
		"Subject: CN=signer,C=BR, Issuer: CN=AC Teste, Valid from: 2024-01-02T03:04:05Z to: 2025-01-02T03:04:05Z",
		info.String())
}

func TestSignResult(t *testing.T) {
	info := &models.CertificateInfo{Subject: "CN=a"}
	ok := models.NewSuccessResult("<signed/>", info)
	assert.True(t, ok.Success)
	assert.Equal(t, "<signed/>", ok.SignedXML)
	assert.Equal(t, "XML signed successfully", ok.Message)
	assert.Same(t, info, ok.CertificateInfo)
	assert.Empty(t, ok.Error)
	assert.Empty(t, ok.ErrorCode)
	assert.False(t, ok.Timestamp.IsZero())

	failed := models.NewFailureResult(models.KeystoreError("Failed to load keystore as PKCS12 or JKS", "/x.p12", nil))
	assert.False(t, failed.Success)
	assert.Empty(t, failed.SignedXML)
	assert.Nil(t, failed.CertificateInfo)
	assert.Equal(t, "Failed to sign XML", failed.Message)
	assert.Equal(t, "Failed to load keystore as PKCS12 or JKS", failed.Error)
	assert.Equal(t, models.KindKeystore, failed.ErrorCode)
	assert.Equal(t, "Path: /x.p12", failed.Details)

	unexpected := models.NewFailureResult(errors.New("boom"))
	assert.Equal(t, models.KindUnexpected, unexpected.ErrorCode)
	assert.Equal(t, "Unexpected error: boom", unexpected.Error)
}

func TestSignResult_JSON(t *testing.T) {
	data, err := json.Marshal(models.NewFailureResult(models.AliasError("No aliases found in keystore")))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "ALIAS_ERROR", body["errorCode"])
	assert.NotContains(t, body, "signedXml")
	assert.NotContains(t, body, "certificateInfo")
	assert.Contains(t, body, "timestamp")
}
