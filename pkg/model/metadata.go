// Package model defines the license data model: token metadata and its
// canonical serialization, read-side aggregates (license and contract info),
// deployment specifications, and the role identifiers recognized by the
// license contract.
package model

import (
	"encoding/json"
	"time"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// LicenseMetadata describes what a license token grants. It is owned by the
// caller and embedded into the contract's opaque metadata field in canonical
// form (see Encode).
type LicenseMetadata struct {
	Software string   `json:"software"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
	// ExpiresAt is a unix timestamp; zero means the license never expires.
	ExpiresAt int64 `json:"expires_at,omitempty"`
	// CustomData carries caller-defined JSON values.
	CustomData map[string]any `json:"custom_data,omitempty"`
}

// Validate checks the required fields.
func (m *LicenseMetadata) Validate() error {
	if m == nil {
		return errs.New(errs.InvalidMetadata, "metadata is required")
	}
	if m.Software == "" {
		return errs.New(errs.InvalidMetadata, "metadata software name is required")
	}
	if m.Version == "" {
		return errs.New(errs.InvalidMetadata, "metadata version is required")
	}
	if m.ExpiresAt < 0 {
		return errs.New(errs.InvalidMetadata, "metadata expiry must not be negative")
	}
	return nil
}

// Encode returns the canonical string form of the metadata: compact JSON
// with a fixed field order and lexicographically sorted custom-data keys
// (both guaranteed by encoding/json). The encoding is deterministic, so the
// value stored on-chain can always be re-derived from the same metadata.
func (m *LicenseMetadata) Encode() (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", errs.Wrap(errs.InvalidMetadata, "encode metadata", err)
	}
	return string(raw), nil
}

// ParseLicenseMetadata parses the canonical string form produced by Encode
// (or by any other writer of the contract's metadata field) back into a
// LicenseMetadata value.
func ParseLicenseMetadata(encoded string) (*LicenseMetadata, error) {
	if encoded == "" {
		return nil, errs.New(errs.InvalidLicenseMetadata, "empty metadata value")
	}
	var m LicenseMetadata
	if err := json.Unmarshal([]byte(encoded), &m); err != nil {
		return nil, errs.Wrap(errs.InvalidLicenseMetadata, "parse metadata", err)
	}
	if err := m.Validate(); err != nil {
		return nil, errs.Wrap(errs.InvalidLicenseMetadata, "invalid metadata content", err)
	}
	return &m, nil
}

// Expired reports whether the license has an expiry and it lies at or before
// now. Licenses without ExpiresAt never expire.
func (m *LicenseMetadata) Expired(now time.Time) bool {
	return m.ExpiresAt > 0 && !now.Before(time.Unix(m.ExpiresAt, 0))
}
