package frontend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/strongdm/frontconf/internal/appconfig"
)

// ProxyUserHeader is the header authenticating proxies commonly use for the
// signed-in user. Publishers only read it when configured to.
const ProxyUserHeader = "X-Forwarded-User"

// ConfigReader is the part of *appconfig.Store the publisher needs.
type ConfigReader interface {
	ConfigData() appconfig.AuthConfig
	APIURL() (string, bool)
	UserID() (string, bool)
}

// Bootstrap is the configuration handed to the page.
type Bootstrap struct {
	AppConfig    appconfig.AuthConfig `json:"appConfig"`
	ActiveUserID *string              `json:"activeUserId"`
	APIURL       *string              `json:"apiUrl,omitempty"`
}

// Publisher turns store contents into page globals.
type Publisher struct {
	Config ConfigReader
	// UserHeader names a trusted request header holding the active user.
	// Blank disables the header and always uses the store's UserID.
	UserHeader string
}

// NewPublisher returns a Publisher that trusts no request header and takes
// the active user from cfg.
func NewPublisher(cfg ConfigReader) *Publisher {
	return &Publisher{Config: cfg}
}

// Bootstrap assembles the payload for r.
func (p *Publisher) Bootstrap(r *http.Request) Bootstrap {
	var b Bootstrap
	b.AppConfig = p.Config.ConfigData()
	if url, ok := p.Config.APIURL(); ok {
		b.APIURL = &url
		// The page appends the /api suffix itself, so publish the base.
		if b.AppConfig.APIURL == "" {
			b.AppConfig.APIURL = strings.TrimSuffix(url, "/api")
		}
	}
	if id, ok := p.activeUser(r); ok {
		b.ActiveUserID = &id
	}
	return b
}

func (p *Publisher) activeUser(r *http.Request) (string, bool) {
	if p.UserHeader != "" && r != nil {
		if id := strings.TrimSpace(r.Header.Get(p.UserHeader)); id != "" {
			return id, true
		}
	}
	return p.Config.UserID()
}

// Script renders the statements assigning the page globals. json.Marshal
// escapes <, > and & so the output is safe inside a <script> element.
func (b Bootstrap) Script() ([]byte, error) {
	cfg, err := json.Marshal(b.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("encode appConfig: %w", err)
	}
	user, err := json.Marshal(b.ActiveUserID)
	if err != nil {
		return nil, fmt.Errorf("encode activeUserId: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("window.appConfig=")
	buf.Write(cfg)
	buf.WriteString(";window.activeUserId=")
	buf.Write(user)
	buf.WriteString(";")
	return buf.Bytes(), nil
}

// scriptTag wraps script in a <script> element carrying nonce when set.
func scriptTag(script []byte, nonce string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<script data-frontconf`)
	if nonce != "" {
		fmt.Fprintf(&buf, ` nonce="%s"`, nonce)
	}
	buf.WriteString(">")
	buf.Write(script)
	buf.WriteString("</script>")
	return buf.Bytes()
}

// injectHead places tag right after the opening <head> element so it runs
// before any application script. Documents without a head get tag prepended.
func injectHead(data, tag []byte) []byte {
	if len(data) == 0 {
		return append([]byte(nil), tag...)
	}

	if idx := indexHeadOpen(data); idx != -1 {
		if end := bytes.IndexByte(data[idx:], '>'); end != -1 {
			end += idx + 1
			buf := make([]byte, 0, len(data)+len(tag))
			buf = append(buf, data[:end]...)
			buf = append(buf, tag...)
			buf = append(buf, data[end:]...)
			return buf
		}
	}

	buf := make([]byte, 0, len(tag)+len(data))
	buf = append(buf, tag...)
	buf = append(buf, data...)
	return buf
}

// indexHeadOpen finds the first "<head" followed by '>' or whitespace,
// matching ASCII case-insensitively so offsets stay valid for data.
func indexHeadOpen(data []byte) int {
	const open = "<head"
	for i := 0; i+len(open) < len(data); i++ {
		if data[i] != '<' {
			continue
		}
		match := true
		for j := 1; j < len(open); j++ {
			if data[i+j]|0x20 != open[j] {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		if next := data[i+len(open)]; next == '>' || isSpace(next) {
			return i
		}
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
