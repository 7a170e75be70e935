package ambient

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/strongdm/frontconf/internal/appconfig"
)

// KeyActiveUser is the document key holding the active user identifier,
// matching the name of the page global.
const KeyActiveUser = "activeUserId"

// ParseError represents a failure to decode a configuration document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is the decoded content of a configuration file.
type Document struct {
	Config       *appconfig.AuthConfig
	ActiveUserID string
	HasUser      bool
}

// ReadFile loads a TOML or JSON (by .json extension) document. A missing file
// returns a nil Document and no error.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decodeDocument(data, path)
}

func decodeDocument(data []byte, path string) (*Document, error) {
	var raw map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
	} else if err := toml.Unmarshal(data, &raw); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			return nil, &ParseError{Path: path, Err: decodeErr}
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	if raw == nil {
		raw = make(map[string]any)
	}

	doc := &Document{Config: appconfig.Coerce(raw)}
	if value, ok := raw[KeyActiveUser]; ok && value != nil {
		user, ok := value.(string)
		if !ok {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("%s: expected string, got %T", KeyActiveUser, value)}
		}
		if user != "" {
			doc.ActiveUserID, doc.HasUser = user, true
		}
	}
	return doc, nil
}

// File is a source backed by a configuration file that is re-read on every
// call, so edits take effect without a restart. Unreadable or malformed files
// are logged and treated as absent.
type File struct {
	Path string
}

// DefaultFile returns a File at the resolved default location.
func DefaultFile() (File, error) {
	_, path, err := GetConfigPath()
	if err != nil {
		return File{}, err
	}
	return File{Path: path}, nil
}

func (f File) load() *Document {
	if strings.TrimSpace(f.Path) == "" {
		return nil
	}
	doc, err := ReadFile(f.Path)
	if err != nil {
		log.Printf("ambient: %v", err)
		return nil
	}
	return doc
}

func (f File) AppConfig() *appconfig.AuthConfig {
	doc := f.load()
	if doc == nil {
		return nil
	}
	return doc.Config
}

func (f File) ActiveUserID() (string, bool) {
	doc := f.load()
	if doc == nil || !doc.HasUser {
		return "", false
	}
	return doc.ActiveUserID, true
}
