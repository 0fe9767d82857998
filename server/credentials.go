package server

import "fmt"

// Fixed test identity used by every spawned server instance. This is
// the emulator's publicly documented default credential, not a secret.
const (
	AccountName = "devstoreaccount1"
	AccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// Credentials describes how the blob client reaches a running server.
// It is a pure projection of a Handle, immutable once built.
type Credentials struct {
	Protocol string
	Host     string
	Port     int
	Account  string
	Key      string
}

// NewCredentials derives connection credentials from a running handle.
func NewCredentials(h *Handle) Credentials {
	return Credentials{
		Protocol: "http",
		Host:     "127.0.0.1",
		Port:     h.Port,
		Account:  h.Account,
		Key:      h.Key,
	}
}

// ConnectionString renders the semicolon-delimited descriptor the
// Azure Blob SDK expects. The format is a fixed client-library
// contract and must be reproduced exactly.
func (c Credentials) ConnectionString() string {
	return fmt.Sprintf(
		"DefaultEndpointsProtocol=%s;AccountName=%s;AccountKey=%s;"+
			"BlobEndpoint=%s://%s:%d/%s;",
		c.Protocol, c.Account, c.Key,
		c.Protocol, c.Host, c.Port, c.Account,
	)
}
