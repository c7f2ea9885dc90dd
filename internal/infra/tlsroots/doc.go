// Package tlsroots provides the TLS material of the sweeper's metrics
// endpoint:
//
//   - keypair.go: a server key pair reloaded when its files change
//   - clientca.go: client CA pools and the server tls.Config
package tlsroots
