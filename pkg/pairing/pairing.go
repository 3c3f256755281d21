package pairing

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net"
)

const secretLength = 32

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Payload is what a viz client needs to reach the server. It is rendered
// as a QR code and also exposed over the pairing endpoints.
type Payload struct {
	IP     string `json:"ip"`
	Port   int    `json:"port"`
	Secret string `json:"secret"`
}

// GenerateSecret returns a fresh alphanumeric secret. It is minted once
// at process start, so a restart invalidates every paired client.
func GenerateSecret() (string, error) {
	buf := make([]byte, secretLength)
	max := big.NewInt(int64(len(secretAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate secret: %w", err)
		}
		buf[i] = secretAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// LocalIP returns the outbound-facing IPv4 address of this host. The UDP
// dial never sends a packet; it only asks the kernel to pick a route.
func LocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("resolve local ip: %w", err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("resolve local ip: unexpected addr type %T", conn.LocalAddr())
	}
	return addr.IP.String(), nil
}
