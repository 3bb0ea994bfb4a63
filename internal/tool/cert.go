package tool

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"time"
)

// IsFileExists reports whether filename points at an existing file.
func IsFileExists(filename string) (bool, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// GenerateTlsCertificate writes a self-signed ECDSA P-256 server key and
// certificate valid for ten years. hostnames may mix DNS names and IPs.
func GenerateTlsCertificate(
	organization string,
	serverCommonName string,
	serverKeyFilename, serverCertFilename string,
	hostnames []string) error {

	serverKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}
	if err = writePemFile(serverKeyFilename, "EC PRIVATE KEY", nil, serverKey); err != nil {
		return err
	}

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return err
	}

	notBefore := time.Now()
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{organization},
			CommonName:   serverCommonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range hostnames {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &serverKey.PublicKey, serverKey)
	if err != nil {
		return err
	}
	return writePemFile(serverCertFilename, "CERTIFICATE", derBytes, nil)
}

func writePemFile(filename, blockType string, derBytes []byte, key *ecdsa.PrivateKey) error {
	if key != nil {
		b, err := x509.MarshalECPrivateKey(key)
		if err != nil {
			return err
		}
		derBytes = b
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err = pem.Encode(file, &pem.Block{Type: blockType, Bytes: derBytes}); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
