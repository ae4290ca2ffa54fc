package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type relay boards advertise
	ServiceType = "_relayboard._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for board discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default HTTP port for relay boards
	DefaultPort = 80
)

// Scanner handles mDNS discovery of relay boards
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// ScanForBoards discovers relay boards on the local network. The scan runs
// for the full timeout and returns every board seen.
func (s *Scanner) ScanForBoards(ctx context.Context) ([]*Board, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	boards := make([]*Board, 0)
	collected := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		defer close(collected)
		for entry := range entries {
			if board := parseServiceEntry(entry); board != nil {
				boards = append(boards, board)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-collected

	return boards, nil
}

// ScanForBoards is a convenience function to scan with a custom timeout
func ScanForBoards(ctx context.Context, timeout time.Duration) ([]*Board, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	return scanner.ScanForBoards(ctx)
}

// parseServiceEntry converts a zeroconf service entry to a Board.
// Returns nil for entries without a usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Board {
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	relays := 0
	if v, ok := metadata["relays"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			relays = n
		}
	}

	return &Board{
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Relays:       relays,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
