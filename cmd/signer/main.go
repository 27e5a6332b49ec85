package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lb-conn/xml-signer/application/models"
	"github.com/lb-conn/xml-signer/config"
	"github.com/lb-conn/xml-signer/setup"
)

// O CLI lê um XML, assina ou valida de acordo com as flags e escreve na saída padrão.
func main() {
	mode := flag.String("mode", "", "operation to perform: sign, verify or test")
	keystorePath := flag.String("keystore", "", "path to PKCS#12 or JKS keystore containing certificate and private key")
	pass := flag.String("pass", "", "keystore password")
	alias := flag.String("alias", "", "key alias (optional; first alias when empty)")
	method := flag.String("method", models.DefaultSignatureMethod, "signature method: RSA-SHA256, RSA-SHA512 or RSA-SHA1")
	c14n := flag.String("c14n", models.DefaultCanonicalizationMethod, "canonicalization method URI")
	filePath := flag.String("file", "", "path to XML file to sign or verify")
	data := flag.String("data", "", "XML content as a string (optional; takes precedence over --file)")
	verbose := flag.Bool("v", false, "log to stderr")
	flag.Parse()

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Logger.Pretty = true
	if !*verbose {
		cfg.Logger.Level = zerolog.WarnLevel
	}
	setup.Logger(cfg.Logger)

	if *mode != "sign" && *mode != "verify" && *mode != "test" {
		log.Fatal().Msg("invalid or missing mode: must be 'sign' or 'verify' or 'test'")
	}

	if *mode == "test" {
		fmt.Println("test mode: OK")
		return
	}

	// Determine XML input: --data > --file > stdin
	var xmlData []byte
	var err error

	switch {
	case strings.TrimSpace(*data) != "":
		xmlData = []byte(*data)
	case strings.TrimSpace(*filePath) != "":
		xmlData, err = os.ReadFile(*filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read input file")
		}
	default:
		xmlData, err = io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read from stdin")
		}
	}

	app := setup.NewApplication(cfg, nil)
	ctx := context.Background()

	switch *mode {
	case "sign":
		if strings.TrimSpace(*keystorePath) == "" {
			log.Fatal().Msg("missing --keystore")
		}
		result := app.Sign(ctx, models.SignRequest{
			XMLContent:             string(xmlData),
			CertificatePath:        *keystorePath,
			CertificatePassword:    *pass,
			KeyAlias:               *alias,
			SignatureMethod:        *method,
			CanonicalizationMethod: *c14n,
		})
		if !result.Success {
			log.Fatal().Str("error_code", result.ErrorCode.String()).Str("details", result.Details).Msg(result.Error)
		}
		if _, err := io.WriteString(os.Stdout, result.SignedXML); err != nil {
			log.Fatal().Err(err).Msg("failed to write output")
		}
	case "verify":
		if !app.Verify(ctx, xmlData) {
			fmt.Fprintln(os.Stderr, "signature invalid")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stdout, "signature valid")
	}
}
