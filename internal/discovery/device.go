package discovery

import (
	"fmt"
	"time"
)

// Board represents a relay board discovered on the local network
type Board struct {
	// Hostname is the mDNS hostname (e.g., "relayboard-3f.local")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.40")
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Relays is the relay count advertised in TXT records, 0 if absent
	Relays int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the board was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the board
func (b *Board) String() string {
	return fmt.Sprintf("Relay board %s at %s:%d", b.Hostname, b.IP, b.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Board) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
