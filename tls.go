package main

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const keypairReloadInterval = 15 * time.Second

type keypairReloader struct {
	certMu   sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string
	log      zerolog.Logger
}

// newKeypairReloader loads the TLS certificate and key and reloads them every
// 15 seconds until ctx is done. If a reload fails the old certificate stays in use.
func newKeypairReloader(ctx context.Context, certPath, keyPath string, logger zerolog.Logger) (*keypairReloader, error) {
	result := &keypairReloader{
		certPath: certPath,
		keyPath:  keyPath,
		log:      logger.With().Str("component", "tls").Logger(),
	}
	if err := result.maybeReload(); err != nil {
		return nil, err
	}

	go func() {
		ticker := time.NewTicker(keypairReloadInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := result.maybeReload(); err != nil {
					result.log.Warn().Err(err).Msg("keeping old TLS certificate because the new one could not be loaded")
				}
			}
		}
	}()
	return result, nil
}

func (kpr *keypairReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(clientHello *tls.ClientHelloInfo) (*tls.Certificate, error) {
		kpr.certMu.RLock()
		defer kpr.certMu.RUnlock()
		return kpr.cert, nil
	}
}

func (kpr *keypairReloader) maybeReload() error {
	newCert, err := tls.LoadX509KeyPair(kpr.certPath, kpr.keyPath)
	if err != nil {
		return err
	}
	kpr.certMu.Lock()
	defer kpr.certMu.Unlock()
	kpr.cert = &newCert
	return nil
}
