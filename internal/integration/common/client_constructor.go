package common

import (
	"github.com/futig/oportune/internal/config"
	pkgRetry "github.com/futig/oportune/internal/pkg/retry"
	pkgHTTP "github.com/futig/oportune/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds the shared JSON connector of an external service.
// extra options are applied after the defaults.
func NewBaseConnector(cfg config.HTTPClientConfig, retryCfg pkgRetry.RetryConfig, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:       logger,
		BaseURL:      cfg.Url,
		RetryOptions: retryCfg.ToRetryOptions(),
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	}
	opts = append(opts, extra...)

	return pkgHTTP.NewConnector(connCfg, opts...)
}
