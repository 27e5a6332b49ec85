package setup

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lb-conn/xml-signer/application/ports"
	"github.com/lb-conn/xml-signer/application/usecases"
	"github.com/lb-conn/xml-signer/config"
	"github.com/lb-conn/xml-signer/infrastructure/httpapi"
	"github.com/lb-conn/xml-signer/infrastructure/keystore"
	"github.com/lb-conn/xml-signer/infrastructure/metrics"
	"github.com/lb-conn/xml-signer/infrastructure/xmldsig"
)

// Logger configura o logger global do zerolog. Loggers obtidos com log.Ctx
// em contextos sem logger caem no logger global.
func Logger(cfg config.Logger) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(cfg.Level)

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	lctx := logger.With().Timestamp().Str("service", httpapi.ServiceID)
	if cfg.Caller {
		lctx = lctx.Caller()
	}
	log.Logger = lctx.Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

// NewApplication cria a aplicação com o loader de keystores (PKCS#12, depois JKS) e o signer XML-DSig.
func NewApplication(cfg config.Server, recorder ports.MetricsRecorder) *usecases.Application {
	if recorder == nil {
		recorder = metrics.NewNoopMetricsRecorder()
	}

	return usecases.NewApplication(
		keystore.NewLoader(),
		xmldsig.NewSigner(),
		recorder,
		usecases.Defaults{
			SignatureMethod:        cfg.Signer.SignatureMethod,
			CanonicalizationMethod: cfg.Signer.CanonicalizationMethod,
		},
	)
}

// NewServer cria o servidor HTTP. Com métricas habilitadas, um registry próprio
// recebe os coletores do processo, do runtime e do signer, servidos em /metrics.
func NewServer(cfg config.Server) *httpapi.Server {
	if !cfg.Metrics.Enabled {
		return httpapi.NewServer(cfg, NewApplication(cfg, nil), nil)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheusMetricsRecorderWithRegistry(registry)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return httpapi.NewServer(cfg, NewApplication(cfg, recorder), handler)
}
