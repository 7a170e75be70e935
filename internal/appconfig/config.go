package appconfig

import (
	"fmt"
	"math"
	"reflect"
)

// Recognized field names, shared by every encoding of AuthConfig.
const (
	KeyAPIURL          = "API_URL"
	KeyClientID        = "REACT_APP_MSAL_AUTH_CLIENTID"
	KeyAuthority       = "REACT_APP_MSAL_AUTH_AUTHORITY"
	KeyRedirectURL     = "REACT_APP_MSAL_REDIRECT_URL"
	KeyPostRedirectURL = "REACT_APP_MSAL_POST_REDIRECT_URL"
)

// AuthConfig is the group of values describing the API base and the external
// authentication provider. The group is only ever replaced as a whole.
type AuthConfig struct {
	APIURL          string `json:"API_URL" toml:"API_URL"`
	ClientID        string `json:"REACT_APP_MSAL_AUTH_CLIENTID" toml:"REACT_APP_MSAL_AUTH_CLIENTID"`
	Authority       string `json:"REACT_APP_MSAL_AUTH_AUTHORITY" toml:"REACT_APP_MSAL_AUTH_AUTHORITY"`
	RedirectURL     string `json:"REACT_APP_MSAL_REDIRECT_URL" toml:"REACT_APP_MSAL_REDIRECT_URL"`
	PostRedirectURL string `json:"REACT_APP_MSAL_POST_REDIRECT_URL" toml:"REACT_APP_MSAL_POST_REDIRECT_URL"`
}

// authIncomplete reports whether any of the four provider fields is empty.
// API_URL is deliberately not part of the check.
func (c AuthConfig) authIncomplete() bool {
	return c.ClientID == "" || c.Authority == "" || c.RedirectURL == "" || c.PostRedirectURL == ""
}

// IsZero reports whether every field is empty.
func (c AuthConfig) IsZero() bool {
	return c == AuthConfig{}
}

// Map returns the record keyed by its recognized names.
func (c AuthConfig) Map() map[string]string {
	return map[string]string{
		KeyAPIURL:          c.APIURL,
		KeyClientID:        c.ClientID,
		KeyAuthority:       c.Authority,
		KeyRedirectURL:     c.RedirectURL,
		KeyPostRedirectURL: c.PostRedirectURL,
	}
}

// Coerce builds an AuthConfig from a loosely typed record such as a decoded
// JSON or TOML document. Falsy values (nil, false, numeric zero, "") become
// the empty string; other strings are kept verbatim and remaining truthy
// scalars are formatted with fmt.Sprint. Unrecognized keys are ignored.
// A nil record yields nil.
func Coerce(raw map[string]any) *AuthConfig {
	if raw == nil {
		return nil
	}
	return &AuthConfig{
		APIURL:          coerceString(raw[KeyAPIURL]),
		ClientID:        coerceString(raw[KeyClientID]),
		Authority:       coerceString(raw[KeyAuthority]),
		RedirectURL:     coerceString(raw[KeyRedirectURL]),
		PostRedirectURL: coerceString(raw[KeyPostRedirectURL]),
	}
}

func coerceString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		if !rv.Bool() {
			return ""
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() == 0 {
			return ""
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() == 0 {
			return ""
		}
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == 0 || math.IsNaN(f) {
			return ""
		}
	}
	return fmt.Sprint(value)
}

// Source supplies configuration published by the hosting environment after
// startup. Implementations are consulted on every read and may start
// returning values at any time.
type Source interface {
	// AppConfig returns the published configuration, or nil when none is
	// available yet.
	AppConfig() *AuthConfig
	// ActiveUserID returns the identifier of the active user, if any.
	ActiveUserID() (string, bool)
}

// State is a raw view of the store, read without consulting the Source.
type State struct {
	APIURL    string
	UserID    string
	UserIDSet bool
	Auth      AuthConfig
}
