package ambient

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/strongdm/frontconf/internal/appconfig"
)

// KeyActiveUserID names the variable holding the active user identifier.
const KeyActiveUserID = "ACTIVE_USER_ID"

var envKeys = []string{
	appconfig.KeyAPIURL,
	appconfig.KeyClientID,
	appconfig.KeyAuthority,
	appconfig.KeyRedirectURL,
	appconfig.KeyPostRedirectURL,
}

// Env reads the recognized names from the process environment, optionally
// layered over a dotenv file. Real environment variables win over the file.
// The config counts as published once any recognized name has a value.
type Env struct {
	// Prefix is prepended to every variable name, e.g. "FRONTCONF_".
	Prefix string
	// DotenvPath, when set, names a dotenv file re-read on every call.
	// A missing file is treated as empty.
	DotenvPath string
}

func (e Env) lookup() func(string) (string, bool) {
	file := e.readDotenv()
	return func(name string) (string, bool) {
		key := e.Prefix + name
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := file[key]
		return value, ok
	}
}

func (e Env) readDotenv() map[string]string {
	path := strings.TrimSpace(e.DotenvPath)
	if path == "" {
		return nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("ambient: read dotenv %s: %v", path, err)
		}
		return nil
	}
	return values
}

func (e Env) AppConfig() *appconfig.AuthConfig {
	lookup := e.lookup()
	raw := make(map[string]any, len(envKeys))
	found := false
	for _, key := range envKeys {
		if value, ok := lookup(key); ok && value != "" {
			raw[key] = value
			found = true
		}
	}
	if !found {
		return nil
	}
	return appconfig.Coerce(raw)
}

func (e Env) ActiveUserID() (string, bool) {
	value, ok := e.lookup()(KeyActiveUserID)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
