package usecases

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/lb-conn/xml-signer/application/models"
	"github.com/lb-conn/xml-signer/application/ports"
)

// Defaults are the method selectors applied when a SignRequest leaves them empty.
type Defaults struct {
	SignatureMethod        string
	CanonicalizationMethod string
}

// DefaultDefaults returns RSA-SHA256 with exclusive canonicalization.
func DefaultDefaults() Defaults {
	return Defaults{
		SignatureMethod:        models.DefaultSignatureMethod,
		CanonicalizationMethod: models.DefaultCanonicalizationMethod,
	}
}

// Application holds the dependencies for signing operations.
type Application struct {
	loader   ports.KeystoreLoader
	signer   ports.XMLSigner
	metrics  ports.MetricsRecorder
	defaults Defaults
}

// NewApplication creates a new instance of the Application with the provided dependencies.
func NewApplication(loader ports.KeystoreLoader, signer ports.XMLSigner, metrics ports.MetricsRecorder, defaults Defaults) *Application {
	if defaults.SignatureMethod == "" {
		defaults.SignatureMethod = models.DefaultSignatureMethod
	}
	if defaults.CanonicalizationMethod == "" {
		defaults.CanonicalizationMethod = models.DefaultCanonicalizationMethod
	}
	return &Application{
		loader:   loader,
		signer:   signer,
		metrics:  metrics,
		defaults: defaults,
	}
}

// Sign signs req.XMLContent with the key pair found in the keystore at req.CertificatePath.
// Failures, including panics, are reported in the returned SignResult and never as an error.
func (app *Application) Sign(ctx context.Context, req models.SignRequest) (result *models.SignResult) {
	start := time.Now()
	logger := log.Ctx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Panic while signing XML")
			result = models.NewFailureResult(errors.Errorf("panic: %v", r))
		}
		app.metrics.RecordSign(result.ErrorCode.String(), time.Since(start))
	}()

	signed, info, err := app.sign(ctx, req)
	if err != nil {
		signErr := models.AsSignError(err)
		logger.Error().
			Str("error_code", signErr.Kind.String()).
			Str("details", signErr.Details).
			Msg(signErr.Error())
		return models.NewFailureResult(signErr)
	}

	logger.Info().Str("certificate", info.String()).Msg("XML signed successfully")
	return models.NewSuccessResult(string(signed), info)
}

func (app *Application) sign(ctx context.Context, req models.SignRequest) ([]byte, *models.CertificateInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	req = req.WithDefaults(app.defaults.SignatureMethod, app.defaults.CanonicalizationMethod)

	logger := log.Ctx(ctx)
	logger.Info().
		Bool("dev_mode", req.DevMode).
		Str("certificate_path", req.CertificatePath).
		Str("signature_method", req.SignatureMethod).
		Msg("Signing XML")

	ks, err := app.loader.Load(ctx, req.CertificatePath, req.CertificatePassword)
	if err != nil {
		return nil, nil, err
	}
	app.metrics.RecordKeystoreLoad(ks.Format())

	alias, err := ResolveAlias(ctx, ks, req.KeyAlias)
	if err != nil {
		return nil, nil, err
	}

	key, cert, err := ks.KeyPair(alias, req.CertificatePassword)
	if err != nil {
		return nil, nil, models.CertificateError("Failed to load private key or certificate", alias, err)
	}
	if key == nil || cert == nil {
		return nil, nil, models.CertificateError("Private key or certificate not found for alias", alias, nil)
	}

	info := models.NewCertificateInfo(cert)
	logger.Debug().Str("alias", alias).Str("certificate", info.String()).Msg("Using certificate")

	signed, err := app.signer.Sign(ctx, []byte(req.XMLContent), key, cert, ports.SignOptions{
		SignatureMethod:        req.SignatureMethod,
		CanonicalizationMethod: req.CanonicalizationMethod,
	})
	if err != nil {
		return nil, nil, err
	}
	return signed, info, nil
}

// ResolveAlias picks the keystore entry used to sign: preferred when present,
// otherwise the first alias in the keystore's enumeration order.
func ResolveAlias(ctx context.Context, ks ports.Keystore, preferred string) (string, error) {
	if preferred != "" {
		if ks.ContainsAlias(preferred) {
			return preferred, nil
		}
		log.Ctx(ctx).Warn().Str("alias", preferred).Msg("Alias not found in keystore, using first available alias")
	}

	aliases := ks.Aliases()
	if len(aliases) == 0 {
		return "", models.AliasError("No aliases found in keystore")
	}
	return aliases[0], nil
}

// Verify reports whether signedXML carries a valid enveloped signature.
// Every failure, including a panic, yields false; the reason is logged.
func (app *Application) Verify(ctx context.Context, signedXML []byte) (valid bool) {
	logger := log.Ctx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Panic while verifying XML signature")
			valid = false
		}
		app.metrics.RecordVerify(valid)
	}()

	if err := app.signer.Verify(ctx, signedXML); err != nil {
		logger.Warn().Err(err).Msg("XML signature is invalid")
		return false
	}

	logger.Info().Msg("XML signature is valid")
	return true
}
