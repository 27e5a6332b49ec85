package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/lb-conn/xml-signer/application/models"
)

type HTTP struct {
	ListenAddress   string        `yaml:"listen_address"`
	BasePath        string        `yaml:"base_path"`
	BodyLimit       string        `yaml:"body_limit"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Logger struct {
	Level  zerolog.Level `yaml:"level"`
	Pretty bool          `yaml:"pretty"`
	Caller bool          `yaml:"caller"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

// Signer guarda os métodos usados quando a requisição não informa nenhum.
type Signer struct {
	SignatureMethod        string `yaml:"signature_method"`
	CanonicalizationMethod string `yaml:"canonicalization_method"`
}

type Server struct {
	DevMode bool    `yaml:"dev_mode"`
	HTTP    HTTP    `yaml:"http"`
	Logger  Logger  `yaml:"logger"`
	Metrics Metrics `yaml:"metrics"`
	Signer  Signer  `yaml:"signer"`
}

// DefaultServiceConfig retorna a configuração padrão, sem ler arquivo nem ambiente.
func DefaultServiceConfig() Server {
	return Server{
		DevMode: false,
		HTTP: HTTP{
			ListenAddress:   ":8080",
			BasePath:        "/api/v1/xml-signer",
			BodyLimit:       "10M",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: Logger{
			Level:  zerolog.InfoLevel,
			Pretty: false,
			Caller: false,
		},
		Metrics: Metrics{
			Enabled: true,
		},
		Signer: Signer{
			SignatureMethod:        models.DefaultSignatureMethod,
			CanonicalizationMethod: models.DefaultCanonicalizationMethod,
		},
	}
}

// DefaultServiceConfigFromEnv aplica as variáveis XMLSIGNER_* sobre os padrões.
func DefaultServiceConfigFromEnv() Server {
	cfg := DefaultServiceConfig()
	cfg.applyEnv()
	return cfg
}

// Load monta a configuração: padrões, depois o arquivo YAML em path (opcional),
// depois as variáveis de ambiente. O resultado é validado.
func Load(path string) (Server, error) {
	cfg := DefaultServiceConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Server{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Server{}, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (s *Server) applyEnv() {
	s.DevMode = getEnvAsBool("XMLSIGNER_DEV_MODE", s.DevMode)

	s.HTTP.ListenAddress = getEnv("XMLSIGNER_HTTP_LISTEN_ADDRESS", s.HTTP.ListenAddress)
	s.HTTP.BasePath = getEnv("XMLSIGNER_HTTP_BASE_PATH", s.HTTP.BasePath)
	s.HTTP.BodyLimit = getEnv("XMLSIGNER_HTTP_BODY_LIMIT", s.HTTP.BodyLimit)
	s.HTTP.ReadTimeout = getEnvAsDuration("XMLSIGNER_HTTP_READ_TIMEOUT", s.HTTP.ReadTimeout)
	s.HTTP.WriteTimeout = getEnvAsDuration("XMLSIGNER_HTTP_WRITE_TIMEOUT", s.HTTP.WriteTimeout)
	s.HTTP.ShutdownTimeout = getEnvAsDuration("XMLSIGNER_HTTP_SHUTDOWN_TIMEOUT", s.HTTP.ShutdownTimeout)

	s.Logger.Level = getEnvAsLogLevel("XMLSIGNER_LOGGER_LEVEL", s.Logger.Level)
	s.Logger.Pretty = getEnvAsBool("XMLSIGNER_LOGGER_PRETTY", s.Logger.Pretty)
	s.Logger.Caller = getEnvAsBool("XMLSIGNER_LOGGER_CALLER", s.Logger.Caller)

	s.Metrics.Enabled = getEnvAsBool("XMLSIGNER_METRICS_ENABLED", s.Metrics.Enabled)

	s.Signer.SignatureMethod = getEnv("XMLSIGNER_SIGNER_SIGNATURE_METHOD", s.Signer.SignatureMethod)
	s.Signer.CanonicalizationMethod = getEnv("XMLSIGNER_SIGNER_CANONICALIZATION_METHOD", s.Signer.CanonicalizationMethod)
}

// Validate rejeita métodos padrão desconhecidos e valores HTTP vazios.
func (s Server) Validate() error {
	if s.HTTP.ListenAddress == "" {
		return errors.New("http.listen_address is required")
	}
	if !models.IsSupportedSignatureMethod(s.Signer.SignatureMethod) {
		return errors.Errorf("unsupported default signature method %q", s.Signer.SignatureMethod)
	}
	if !models.IsSupportedCanonicalizationMethod(s.Signer.CanonicalizationMethod) {
		return errors.Errorf("unsupported default canonicalization method %q", s.Signer.CanonicalizationMethod)
	}
	if s.HTTP.ShutdownTimeout <= 0 {
		return errors.New("http.shutdown_timeout must be positive")
	}
	return nil
}
