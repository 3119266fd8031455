package executor

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/youmark/pkcs8"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/wesleyorama2/syncreq/internal/request"
)

var errNoPassphrase = errors.New("private key is encrypted and no passphrase was given")

// buildTLSConfig turns the descriptor's TLS options into a tls.Config.
//
// With VerifyPeer false both the chain and the hostname checks are skipped.
// A CA bundle is installed as the trust anchor whether or not verification
// is enabled.
func buildTLSConfig(opts request.TLSOptions) (*tls.Config, error) {
	cfg := &tls.Config{
		InsecureSkipVerify: !opts.VerifyPeer, //nolint:gosec // opt-in verification is part of the contract
	}

	if opts.CABundle != "" {
		pool, err := loadCABundle(opts.CABundle)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	if opts.HasClientCert() {
		cert, err := loadClientCertificate(opts)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

func loadCABundle(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("failed to parse CA bundle %s: no PEM certificates found", path)
	}
	return pool, nil
}

func loadClientCertificate(opts request.TLSOptions) (tls.Certificate, error) {
	if opts.ClientCertPKCS12 {
		return loadPKCS12(opts)
	}
	return loadPEMPair(opts)
}

// loadPKCS12 decodes a PKCS#12 bundle. The passphrase unlocks the bundle; a
// separate key file, when given, replaces the embedded key.
func loadPKCS12(opts request.TLSOptions) (tls.Certificate, error) {
	data, err := os.ReadFile(opts.ClientCert)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to read client certificate: %w", err)
	}

	key, leaf, chain, err := pkcs12.DecodeChain(data, opts.ClientKeyPassphrase)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to decode PKCS#12 client certificate: %w", err)
	}

	cert := tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}
	for _, ca := range chain {
		cert.Certificate = append(cert.Certificate, ca.Raw)
	}

	if opts.ClientKey != "" {
		keyPEM, err := os.ReadFile(opts.ClientKey)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to read client key: %w", err)
		}
		plain, err := decryptKeyPEM(keyPEM, opts.ClientKeyPassphrase)
		if err != nil {
			return tls.Certificate{}, err
		}
		pair, err := tls.X509KeyPair(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leaf.Raw}), plain)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("client key does not match PKCS#12 certificate: %w", err)
		}
		cert.PrivateKey = pair.PrivateKey
	}

	return cert, nil
}

// loadPEMPair loads a PEM certificate chain and its key. Without a separate
// key path the key is looked up in the certificate file.
func loadPEMPair(opts request.TLSOptions) (tls.Certificate, error) {
	certPEM, err := os.ReadFile(opts.ClientCert)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to read client certificate: %w", err)
	}

	keySource := certPEM
	if opts.ClientKey != "" {
		keySource, err = os.ReadFile(opts.ClientKey)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to read client key: %w", err)
		}
	}

	keyPEM, err := decryptKeyPEM(keySource, opts.ClientKeyPassphrase)
	if err != nil {
		return tls.Certificate{}, err
	}

	cert, err := tls.X509KeyPair(certificatesOnly(certPEM), keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to load client certificate: %w", err)
	}
	return cert, nil
}

// certificatesOnly strips every non-certificate block so that a combined
// cert+key file can be passed to tls.X509KeyPair.
func certificatesOnly(data []byte) []byte {
	var out []byte
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return out
		}
		if block.Type == "CERTIFICATE" {
			out = append(out, pem.EncodeToMemory(block)...)
		}
	}
}

// decryptKeyPEM finds the first private key block in data and returns it as
// an unencrypted PEM block.
func decryptKeyPEM(data []byte, passphrase string) ([]byte, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, errors.New("no private key found in PEM data")
		}
		if !strings.HasSuffix(block.Type, "PRIVATE KEY") {
			continue
		}

		switch {
		case block.Type == "ENCRYPTED PRIVATE KEY":
			if passphrase == "" {
				return nil, errNoPassphrase
			}
			key, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(passphrase))
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt private key: %w", err)
			}
			der, err := x509.MarshalPKCS8PrivateKey(key)
			if err != nil {
				return nil, fmt.Errorf("failed to re-encode private key: %w", err)
			}
			return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil

		case x509.IsEncryptedPEMBlock(block): //nolint:staticcheck // legacy OpenSSL keys are still common
			if passphrase == "" {
				return nil, errNoPassphrase
			}
			der, err := x509.DecryptPEMBlock(block, []byte(passphrase)) //nolint:staticcheck
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt private key: %w", err)
			}
			return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil

		default:
			return pem.EncodeToMemory(block), nil
		}
	}
}
