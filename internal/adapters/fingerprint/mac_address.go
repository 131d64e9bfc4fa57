package fingerprint

import (
	"fmt"
	"net"
	"strings"
)

// MACAddress is a value object representing a validated hardware address.
type MACAddress struct {
	address net.HardwareAddr
}

// ParseMAC parses a MAC address string into a MACAddress value object.
// Supports formats: "XX:XX:XX:XX:XX:XX", "XX-XX-XX-XX-XX-XX", "XXXX.XXXX.XXXX", "XXXXXXXXXXXX"
func ParseMAC(s string) (MACAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MACAddress{}, ErrEmptyMAC
	}

	normalized := strings.ReplaceAll(s, "-", ":")
	if strings.Count(normalized, ".") == 2 && !strings.Contains(normalized, ":") {
		// Cisco dotted form
		normalized = strings.ReplaceAll(normalized, ".", "")
	}

	if !strings.Contains(normalized, ":") && len(normalized) == 12 {
		parts := make([]string, 0, 6)
		for i := 0; i < len(normalized); i += 2 {
			parts = append(parts, normalized[i:i+2])
		}
		normalized = strings.Join(parts, ":")
	}

	hw, err := net.ParseMAC(normalized)
	if err != nil || len(hw) != 6 {
		return MACAddress{}, &ValidationError{
			Field: "mac",
			Value: s,
			Err:   ErrInvalidMAC,
		}
	}

	return MACAddress{address: hw}, nil
}

// MustParseMAC parses a MAC address and panics on error.
// Only use in tests or with known-valid input.
func MustParseMAC(s string) MACAddress {
	mac, err := ParseMAC(s)
	if err != nil {
		panic(fmt.Sprintf("invalid MAC address %q: %v", s, err))
	}
	return mac
}

// OUI returns the Organizationally Unique Identifier (first 3 bytes) as "XX:XX:XX"
func (m MACAddress) OUI() string {
	if len(m.address) < 3 {
		return ""
	}
	return fmt.Sprintf("%02X:%02X:%02X", m.address[0], m.address[1], m.address[2])
}

// IsRandomized reports whether the locally administered bit is set.
// Randomized addresses carry no vendor information.
func (m MACAddress) IsRandomized() bool {
	if len(m.address) == 0 {
		return false
	}
	return (m.address[0] & 0x02) != 0
}

// String returns the MAC address in "XX:XX:XX:XX:XX:XX" form.
func (m MACAddress) String() string {
	return strings.ToUpper(m.address.String())
}

// IsValid returns true if the MAC address is non-empty.
func (m MACAddress) IsValid() bool {
	return len(m.address) > 0
}

// NormalizePrefix converts an OUI prefix in any common notation to "XX:XX:XX".
// It returns "" when fewer than six hex digits are present.
func NormalizePrefix(prefix string) string {
	hex := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			return r
		}
		return -1
	}, prefix)
	if len(hex) < 6 {
		return ""
	}
	hex = strings.ToUpper(hex[:6])
	return hex[0:2] + ":" + hex[2:4] + ":" + hex[4:6]
}
