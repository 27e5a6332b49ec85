package usecases_test

import (
	"context"
	"crypto"
	"crypto/x509"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lb-conn/xml-signer/application/models"
	"github.com/lb-conn/xml-signer/application/ports"
	"github.com/lb-conn/xml-signer/application/usecases"
	"github.com/lb-conn/xml-signer/infrastructure/keystore"
	"github.com/lb-conn/xml-signer/infrastructure/xmldsig"
	"github.com/lb-conn/xml-signer/testfixtures/keystores"
)

const testXML = "<root><data>Test content</data></root>"

type spyRecorder struct {
	mu        sync.Mutex
	signCodes []string
	verifies  []bool
	formats   []string
}

func (s *spyRecorder) RecordSign(errorCode string, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signCodes = append(s.signCodes, errorCode)
}

func (s *spyRecorder) RecordVerify(valid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifies = append(s.verifies, valid)
}

func (s *spyRecorder) RecordKeystoreLoad(format string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formats = append(s.formats, format)
}

func newApplication(t *testing.T) (*usecases.Application, *spyRecorder) {
	t.Helper()
	recorder := &spyRecorder{}
	return usecases.NewApplication(keystore.NewLoader(), xmldsig.NewSigner(), recorder, usecases.DefaultDefaults()), recorder
}

func signedCertificate(t *testing.T, signedXML string) *x509.Certificate {
	t.Helper()

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(signedXML))
	el := doc.FindElement("//ds:X509Certificate")
	require.NotNil(t, el)
	store := xmldsig.NewCertificateStore()
	cert, err := store.AddFromKeyInfo(el.Parent().Parent().Parent())
	require.NoError(t, err)
	return cert
}

func TestSign_FriendlyAliasScenario(t *testing.T) {
	app, recorder := newApplication(t)
	ctx := context.Background()

	result := app.Sign(ctx, models.SignRequest{
		XMLContent:          testXML,
		CertificatePath:     keystores.FriendlyPKCS12Path(t),
		CertificatePassword: keystores.Password,
		KeyAlias:            keystores.FriendlyAlias,
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "XML signed successfully", result.Message)
	assert.Empty(t, result.ErrorCode)
	require.NotNil(t, result.CertificateInfo)
	assert.Contains(t, result.CertificateInfo.Subject, "xml-signer test")

	assert.Contains(t, result.SignedXML, "<data>Test content</data>")
	assert.Contains(t, result.SignedXML, `<ds:Signature xmlns:ds="http://www.w3.org/2000/09/xmldsig#">`)
	assert.Contains(t, result.SignedXML, dsig.RSASHA256SignatureMethod)
	assert.Contains(t, result.SignedXML, models.CanonicalizationExclusive)

	assert.True(t, app.Verify(ctx, []byte(result.SignedXML)))

	assert.Equal(t, []string{""}, recorder.signCodes)
	assert.Equal(t, []string{models.FormatPKCS12}, recorder.formats)
	assert.Equal(t, []bool{true}, recorder.verifies)
}

func TestSign_RoundTripAllMethods(t *testing.T) {
	app, _ := newApplication(t)
	ctx := context.Background()
	path := keystores.WritePKCS12(t, keystores.NewIdentity(t, "methods"), keystores.Password)

	for _, method := range models.SupportedSignatureMethods {
		for _, c14n := range models.SupportedCanonicalizationMethods {
			t.Run(method+" "+c14n, func(t *testing.T) {
				result := app.Sign(ctx, models.SignRequest{
					XMLContent:             testXML,
					CertificatePath:        path,
					CertificatePassword:    keystores.Password,
					SignatureMethod:        method,
					CanonicalizationMethod: c14n,
				})
				require.True(t, result.Success, result.Error)

				assert.True(t, app.Verify(ctx, []byte(result.SignedXML)))
				// Idempotente
				assert.True(t, app.Verify(ctx, []byte(result.SignedXML)))
			})
		}
	}
}

func TestSign_JKS(t *testing.T) {
	app, recorder := newApplication(t)
	ctx := context.Background()

	first := keystores.NewIdentity(t, "first")
	second := keystores.NewIdentity(t, "second")
	path := keystores.WriteJKS(t, keystores.Password,
		keystores.JKSEntry{Alias: "bravo", Identity: second},
		keystores.JKSEntry{Alias: "alpha", Identity: first},
	)

	t.Run("first alias by default", func(t *testing.T) {
		result := app.Sign(ctx, models.SignRequest{XMLContent: testXML, CertificatePath: path, CertificatePassword: keystores.Password})
		require.True(t, result.Success, result.Error)
		assert.Equal(t, first.Certificate.Raw, signedCertificate(t, result.SignedXML).Raw)
		assert.True(t, app.Verify(ctx, []byte(result.SignedXML)))
	})

	t.Run("preferred alias", func(t *testing.T) {
		result := app.Sign(ctx, models.SignRequest{XMLContent: testXML, CertificatePath: path, CertificatePassword: keystores.Password, KeyAlias: "bravo"})
		require.True(t, result.Success, result.Error)
		assert.Equal(t, second.Certificate.Raw, signedCertificate(t, result.SignedXML).Raw)
	})

	t.Run("missing alias falls back to first", func(t *testing.T) {
		result := app.Sign(ctx, models.SignRequest{XMLContent: testXML, CertificatePath: path, CertificatePassword: keystores.Password, KeyAlias: "nonexistent"})
		require.True(t, result.Success, result.Error)
		assert.Equal(t, first.Certificate.Raw, signedCertificate(t, result.SignedXML).Raw)
	})

	assert.Equal(t, []string{models.FormatJKS, models.FormatJKS, models.FormatJKS}, recorder.formats)
}

func TestSign_MissingAliasPKCS12(t *testing.T) {
	app, _ := newApplication(t)
	ctx := context.Background()

	result := app.Sign(ctx, models.SignRequest{
		XMLContent:          testXML,
		CertificatePath:     keystores.FriendlyPKCS12Path(t),
		CertificatePassword: keystores.Password,
		KeyAlias:            "nonexistent",
	})

	require.True(t, result.Success, result.Error)
	assert.True(t, app.Verify(ctx, []byte(result.SignedXML)))
}

func TestSign_UnknownSignatureMethod(t *testing.T) {
	app, _ := newApplication(t)
	ctx := context.Background()

	result := app.Sign(ctx, models.SignRequest{
		XMLContent:          testXML,
		CertificatePath:     keystores.FriendlyPKCS12Path(t),
		CertificatePassword: keystores.Password,
		SignatureMethod:     "FOO",
	})

	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.SignedXML, dsig.RSASHA256SignatureMethod)
	assert.True(t, app.Verify(ctx, []byte(result.SignedXML)))
}

func TestSign_Failures(t *testing.T) {
	id := keystores.NewIdentity(t, "failures")
	pkcs12Path := keystores.WritePKCS12(t, id, keystores.Password)
	ecPath := keystores.WritePKCS12(t, keystores.NewECDSAIdentity(t, "ecdsa"), keystores.Password)
	emptyJKS := keystores.WriteTrustedOnlyJKS(t, keystores.Password, id)
	missing := filepath.Join(t.TempDir(), "invalid", "path.p12")

	tests := []struct {
		name        string
		req         models.SignRequest
		wantKind    models.ErrorKind
		wantDetails string
	}{
		{
			name:        "invalid path",
			req:         models.SignRequest{XMLContent: testXML, CertificatePath: missing, CertificatePassword: keystores.Password},
			wantKind:    models.KindKeystore,
			wantDetails: "Path: " + missing,
		},
		{
			name:        "wrong password",
			req:         models.SignRequest{XMLContent: testXML, CertificatePath: pkcs12Path, CertificatePassword: "wrong-password"},
			wantKind:    models.KindKeystore,
			wantDetails: "Path: " + pkcs12Path,
		},
		{
			name:     "keystore without signing entries",
			req:      models.SignRequest{XMLContent: testXML, CertificatePath: emptyJKS, CertificatePassword: keystores.Password},
			wantKind: models.KindAlias,
		},
		{
			name:     "not xml",
			req:      models.SignRequest{XMLContent: "not xml", CertificatePath: pkcs12Path, CertificatePassword: keystores.Password},
			wantKind: models.KindXMLParse,
		},
		{
			name:     "non rsa key",
			req:      models.SignRequest{XMLContent: testXML, CertificatePath: ecPath, CertificatePassword: keystores.Password},
			wantKind: models.KindSigning,
		},
		{
			name:     "unsupported canonicalization",
			req:      models.SignRequest{XMLContent: testXML, CertificatePath: pkcs12Path, CertificatePassword: keystores.Password, CanonicalizationMethod: "urn:unknown"},
			wantKind: models.KindSigning,
		},
		{
			name:     "blank xml",
			req:      models.SignRequest{XMLContent: " ", CertificatePath: pkcs12Path},
			wantKind: models.KindValidation,
		},
		{
			name:     "blank path",
			req:      models.SignRequest{XMLContent: testXML},
			wantKind: models.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, recorder := newApplication(t)

			result := app.Sign(context.Background(), tt.req)

			assert.False(t, result.Success)
			assert.Equal(t, "Failed to sign XML", result.Message)
			assert.Equal(t, tt.wantKind, result.ErrorCode)
			assert.NotEmpty(t, result.Error)
			assert.Empty(t, result.SignedXML)
			assert.Nil(t, result.CertificateInfo)
			if tt.wantDetails != "" {
				assert.Equal(t, tt.wantDetails, result.Details)
			}
			if tt.req.CertificatePassword != "" {
				assert.NotContains(t, result.Error, tt.req.CertificatePassword)
				assert.NotContains(t, result.Details, tt.req.CertificatePassword)
			}
			assert.Equal(t, []string{tt.wantKind.String()}, recorder.signCodes)
		})
	}
}

func TestVerify_Invalid(t *testing.T) {
	app, recorder := newApplication(t)
	ctx := context.Background()

	result := app.Sign(ctx, models.SignRequest{
		XMLContent:          testXML,
		CertificatePath:     keystores.FriendlyPKCS12Path(t),
		CertificatePassword: keystores.Password,
	})
	require.True(t, result.Success, result.Error)

	tampered := strings.Replace(result.SignedXML, "Test content", "Other content", 1)

	assert.False(t, app.Verify(ctx, []byte(tampered)))
	assert.False(t, app.Verify(ctx, []byte(testXML)))
	assert.False(t, app.Verify(ctx, []byte("not xml")))
	assert.False(t, app.Verify(ctx, nil))
	assert.Equal(t, []bool{false, false, false, false}, recorder.verifies)
}

type panickingSigner struct{}

func (panickingSigner) Sign(context.Context, []byte, crypto.PrivateKey, *x509.Certificate, ports.SignOptions) ([]byte, error) {
	panic("signer exploded")
}

func (panickingSigner) Verify(context.Context, []byte) error {
	panic("verifier exploded")
}

func TestPanicsAreRecovered(t *testing.T) {
	recorder := &spyRecorder{}
	app := usecases.NewApplication(keystore.NewLoader(), panickingSigner{}, recorder, usecases.Defaults{})
	ctx := context.Background()

	var result *models.SignResult
	require.NotPanics(t, func() {
		result = app.Sign(ctx, models.SignRequest{
			XMLContent:          testXML,
			CertificatePath:     keystores.FriendlyPKCS12Path(t),
			CertificatePassword: keystores.Password,
		})
	})
	assert.False(t, result.Success)
	assert.Equal(t, models.KindUnexpected, result.ErrorCode)
	assert.Contains(t, result.Error, "signer exploded")

	var valid bool
	require.NotPanics(t, func() {
		valid = app.Verify(ctx, []byte(testXML))
	})
	assert.False(t, valid)

	assert.Equal(t, []string{models.KindUnexpected.String()}, recorder.signCodes)
	assert.Equal(t, []bool{false}, recorder.verifies)
}

type fakeKeystore struct {
	aliases []string
}

func (f fakeKeystore) Format() string    { return "FAKE" }
func (f fakeKeystore) Aliases() []string { return f.aliases }
func (f fakeKeystore) ContainsAlias(alias string) bool {
	for _, a := range f.aliases {
		if a == alias {
			return true
		}
	}
	return false
}
func (f fakeKeystore) KeyPair(string, string) (crypto.PrivateKey, *x509.Certificate, error) {
	return nil, nil, nil
}

func TestResolveAlias(t *testing.T) {
	ctx := context.Background()
	ks := fakeKeystore{aliases: []string{"first", "second"}}

	alias, err := usecases.ResolveAlias(ctx, ks, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", alias)

	alias, err = usecases.ResolveAlias(ctx, ks, "")
	require.NoError(t, err)
	assert.Equal(t, "first", alias)

	alias, err = usecases.ResolveAlias(ctx, ks, "missing")
	require.NoError(t, err)
	assert.Equal(t, "first", alias)

	_, err = usecases.ResolveAlias(ctx, fakeKeystore{}, "")
	assert.Equal(t, models.KindAlias, models.KindOf(err))
}

type fakeLoader struct {
	ks ports.Keystore
}

func (f fakeLoader) Load(context.Context, string, string) (ports.Keystore, error) {
	return f.ks, nil
}

func TestSign_EntryWithoutKeyPair(t *testing.T) {
	recorder := &spyRecorder{}
	app := usecases.NewApplication(fakeLoader{ks: fakeKeystore{aliases: []string{"only"}}}, xmldsig.NewSigner(), recorder, usecases.Defaults{})

	result := app.Sign(context.Background(), models.SignRequest{XMLContent: testXML, CertificatePath: "/fake"})

	assert.False(t, result.Success)
	assert.Equal(t, models.KindCertificate, result.ErrorCode)
	assert.Equal(t, "Alias: only", result.Details)
	assert.Equal(t, []string{"FAKE"}, recorder.formats)
}
