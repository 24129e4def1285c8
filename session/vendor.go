package session

import (
	"fmt"
	"slices"
	"strings"
)

// Vendor identifies the API a session talks to.
type Vendor string

// Supported vendors.
const (
	VendorOpenAI    Vendor = "openai"
	VendorAnthropic Vendor = "anthropic"
	VendorVertex    Vendor = "vertex"
	VendorOllama    Vendor = "ollama"
)

// Vendors lists every supported vendor.
var Vendors = []Vendor{VendorOpenAI, VendorAnthropic, VendorVertex, VendorOllama}

// ParseVendor converts a vendor name or alias to a Vendor.
func ParseVendor(s string) (Vendor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai", "o":
		return VendorOpenAI, nil
	case "anthropic", "a", "claude":
		return VendorAnthropic, nil
	case "vertex", "v", "google", "gemini":
		return VendorVertex, nil
	case "ollama":
		return VendorOllama, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVendor, s)
	}
}

// String returns the vendor name.
func (v Vendor) String() string {
	return string(v)
}

// Valid reports whether v is a supported vendor.
func (v Vendor) Valid() bool {
	return slices.Contains(Vendors, v)
}

// MarshalText implements encoding.TextMarshaler.
func (v Vendor) MarshalText() ([]byte, error) {
	return []byte(v), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Vendor) UnmarshalText(text []byte) error {
	parsed, err := ParseVendor(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
