// Package discovery locates relay boards on the local network via mDNS.
//
// Boards advertise themselves under the "_relayboard._tcp" service type and
// carry their relay count in a "relays" TXT record. Discovery is how the
// add-device flow finds candidate addresses without the user hunting through
// the router's client list; the hub itself still verifies the board when the
// device is registered.
//
// Requires multicast support on the network interface and mDNS (UDP 5353)
// allowed through the firewall. Safe for concurrent use.
package discovery
