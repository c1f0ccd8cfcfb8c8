// Package domain – source credentials
//
// This file defines the per-platform credential variant stored on a
// ReviewSource. Instead of an untyped document blob, credentials are a tagged
// union: a platform discriminator plus exactly one platform-specific arm,
// validated before persistence. The value round-trips through a single JSON
// text column via the driver.Valuer / sql.Scanner pair below.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GoogleCredentials authenticates Google Business Profile review fetches.
type GoogleCredentials struct {
	// APIKey is the Places API key with access to the source's place ID.
	APIKey string `json:"api_key"`
}

// FacebookCredentials authenticates Facebook Page ratings fetches.
type FacebookCredentials struct {
	// AccessToken is a long-lived page access token.
	AccessToken string `json:"access_token"`
}

// TrustpilotCredentials authenticates Trustpilot business-unit review fetches.
type TrustpilotCredentials struct {
	// APIKey is the Trustpilot application API key.
	APIKey string `json:"api_key"`
	// APISecret is only required for endpoints using OAuth; optional.
	APISecret string `json:"api_secret,omitempty"`
}

// SourceCredentials is the credential set a source uses against its provider
// API. Exactly one arm must be populated and it must match the Platform
// discriminator. The struct is stored as JSON text in the review_sources
// table and deliberately excluded from API responses (json:"-" on the model).
type SourceCredentials struct {
	Platform   Platform               `json:"platform"`
	Google     *GoogleCredentials     `json:"google,omitempty"`
	Facebook   *FacebookCredentials   `json:"facebook,omitempty"`
	Trustpilot *TrustpilotCredentials `json:"trustpilot,omitempty"`
}

// Validate checks that the discriminator names a supported platform and that
// exactly the matching credential arm is present with its required fields.
func (c SourceCredentials) Validate() error {
	if !c.Platform.Valid() {
		return fmt.Errorf("unknown platform %q", string(c.Platform))
	}

	arms := 0
	if c.Google != nil {
		arms++
	}
	if c.Facebook != nil {
		arms++
	}
	if c.Trustpilot != nil {
		arms++
	}
	if arms != 1 {
		return errors.New("exactly one credential set must be provided")
	}

	switch c.Platform {
	case PlatformGoogle:
		if c.Google == nil {
			return errors.New("google credentials required for a google source")
		}
		if strings.TrimSpace(c.Google.APIKey) == "" {
			return errors.New("google api_key is required")
		}
	case PlatformFacebook:
		if c.Facebook == nil {
			return errors.New("facebook credentials required for a facebook source")
		}
		if strings.TrimSpace(c.Facebook.AccessToken) == "" {
			return errors.New("facebook access_token is required")
		}
	case PlatformTrustpilot:
		if c.Trustpilot == nil {
			return errors.New("trustpilot credentials required for a trustpilot source")
		}
		if strings.TrimSpace(c.Trustpilot.APIKey) == "" {
			return errors.New("trustpilot api_key is required")
		}
	}
	return nil
}

// Value implements driver.Valuer, serializing the credentials to JSON text
// for storage.
func (c SourceCredentials) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, accepting the TEXT or BLOB column produced by
// Value. A NULL column leaves the zero value in place.
func (c *SourceCredentials) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = SourceCredentials{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), c)
	case []byte:
		return json.Unmarshal(v, c)
	default:
		return fmt.Errorf("unsupported credentials column type %T", value)
	}
}
