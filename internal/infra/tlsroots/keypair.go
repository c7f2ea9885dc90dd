package tlsroots

import (
	"context"
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Logger is the logging interface used by KeyPair.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// KeyPair is a server certificate that can be replaced while serving.
type KeyPair struct {
	certFile string
	keyFile  string
	logger   Logger
	debounce time.Duration

	mu   sync.RWMutex
	cert *tls.Certificate
}

// LoadKeyPair loads certFile and keyFile. A failed load is an error; later
// reloads that fail keep the previous certificate.
func LoadKeyPair(certFile, keyFile string, logger Logger) (*KeyPair, error) {
	kp := &KeyPair{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger,
		debounce: 200 * time.Millisecond,
	}
	if err := kp.Reload(); err != nil {
		return nil, err
	}
	return kp, nil
}

// Reload reads the key pair from disk again.
func (kp *KeyPair) Reload() error {
	cert, err := tls.LoadX509KeyPair(kp.certFile, kp.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}

	kp.mu.Lock()
	kp.cert = &cert
	kp.mu.Unlock()

	kp.logger.Info("certificate loaded", "cert_file", kp.certFile)
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (kp *KeyPair) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	kp.mu.RLock()
	defer kp.mu.RUnlock()
	return kp.cert, nil
}

// Watch reloads the key pair whenever the certificate or key file is
// written or replaced, until ctx is cancelled. Bursts of events within the
// debounce interval cause one reload.
func (kp *KeyPair) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	defer watcher.Close()

	files := map[string]bool{
		filepath.Clean(kp.certFile): true,
		filepath.Clean(kp.keyFile):  true,
	}
	dirs := map[string]bool{}
	for f := range files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	// Nil until an event arms it.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			kp.logger.Debug("certificate file changed", "file", event.Name, "op", event.Op.String())
			pending = time.After(kp.debounce)

		case <-pending:
			pending = nil
			if err := kp.Reload(); err != nil {
				kp.logger.Error("certificate reload failed", "error", err, "cert_file", kp.certFile)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			kp.logger.Error("certificate watcher error", "error", err)
		}
	}
}
