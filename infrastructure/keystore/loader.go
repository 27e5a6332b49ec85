// Package keystore carrega contêineres de chave privada + certificado (PKCS#12 e JKS).
//
// O formato nunca é inferido pela extensão do arquivo: cada Parser é tentado
// em ordem e o primeiro que decodificar o conteúdo vence.
package keystore

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/lb-conn/xml-signer/application/models"
	"github.com/lb-conn/xml-signer/application/ports"
)

// Parser decodifica o conteúdo bruto de um keystore em um formato específico.
type Parser interface {
	Format() string
	Parse(data []byte, password string) (ports.Keystore, error)
}

// Loader tenta cada Parser em sequência.
type Loader struct {
	parsers []Parser
}

var _ ports.KeystoreLoader = (*Loader)(nil)

// DefaultParsers retorna a ordem padrão: PKCS#12 primeiro (tokens ICP-Brasil), JKS como fallback.
func DefaultParsers() []Parser {
	return []Parser{PKCS12Parser{}, JKSParser{}}
}

// NewLoader cria um Loader. Sem parsers, usa DefaultParsers.
func NewLoader(parsers ...Parser) *Loader {
	if len(parsers) == 0 {
		parsers = DefaultParsers()
	}
	return &Loader{parsers: parsers}
}

// Load lê o arquivo em path e o decodifica com o primeiro Parser que aceitar o conteúdo.
// Toda falha é reportada como KEYSTORE_ERROR com o caminho (nunca a senha) nos detalhes.
func (l *Loader) Load(ctx context.Context, path, password string) (ports.Keystore, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.KeystoreError("Keystore load cancelled", path, err)
	}

	data, err := readKeystoreFile(path)
	if err != nil {
		return nil, models.KeystoreError("Failed to load keystore as PKCS12 or JKS", path, err)
	}

	logger := log.Ctx(ctx)
	for _, parser := range l.parsers {
		ks, err := parser.Parse(data, password)
		if err != nil {
			logger.Debug().Err(err).Str("format", parser.Format()).Str("path", path).Msg("Keystore parser rejected file")
			continue
		}
		logger.Info().Str("format", parser.Format()).Str("path", path).Msg("Loaded keystore")
		return ks, nil
	}

	return nil, models.KeystoreError("Failed to load keystore as PKCS12 or JKS", path, nil)
}

func readKeystoreFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open keystore")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "read keystore")
	}
	if len(data) == 0 {
		return nil, errors.New("keystore file is empty")
	}
	return data, nil
}
