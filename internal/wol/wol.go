// Package wol implements Wake-on-LAN magic packet delivery. Samsung TVs
// keep their network interface listening in standby, so a magic packet is
// the only way to power one on remotely.
package wol

import (
	"encoding/hex"
	"fmt"
	"net"
	"strings"
)

// DefaultBroadcast is the conventional target: the limited broadcast
// address on the UDP discard port.
const DefaultBroadcast = "255.255.255.255:9"

const macRepeat = 16

// ParseMAC accepts colon, dash or dot separated MAC addresses and returns
// the raw six bytes.
func ParseMAC(mac string) ([]byte, error) {
	cleaned := strings.NewReplacer(":", "", "-", "", ".", "").Replace(mac)
	if len(cleaned) != 12 {
		return nil, fmt.Errorf("invalid MAC address: %s", mac)
	}

	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid MAC address %s: %w", mac, err)
	}
	return raw, nil
}

// MagicPacket builds the 102 byte wake payload: six 0xFF bytes followed by
// the MAC repeated sixteen times.
func MagicPacket(mac string) ([]byte, error) {
	raw, err := ParseMAC(mac)
	if err != nil {
		return nil, err
	}

	packet := make([]byte, 0, 6+len(raw)*macRepeat)
	for i := 0; i < 6; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < macRepeat; i++ {
		packet = append(packet, raw...)
	}
	return packet, nil
}

// Wake broadcasts a magic packet for the MAC address on the local network
func Wake(mac string) error {
	return WakeBroadcast(mac, DefaultBroadcast)
}

// WakeBroadcast sends the magic packet to a specific host:port, for
// networks where the limited broadcast does not reach the TV's segment.
func WakeBroadcast(mac, broadcast string) error {
	packet, err := MagicPacket(mac)
	if err != nil {
		return err
	}

	addr, err := net.ResolveUDPAddr("udp", broadcast)
	if err != nil {
		return fmt.Errorf("invalid broadcast address %s: %w", broadcast, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("failed to open UDP socket: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write(packet); err != nil {
		return fmt.Errorf("failed to send magic packet: %w", err)
	}
	return nil
}
