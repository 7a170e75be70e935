package appconfig

import (
	"log/slog"
	"sync"
)

const apiSuffix = "/api"

// Fallback kinds reported to a Recorder.
const (
	FallbackAuth   = "auth"
	FallbackAPIURL = "api_url"
	FallbackUser   = "user"
)

// Recorder observes store activity. The telemetry package provides an
// OpenTelemetry-backed implementation.
type Recorder interface {
	RecordFallback(kind string, applied bool)
	RecordAPIURLMissing()
}

type nopRecorder struct{}

func (nopRecorder) RecordFallback(string, bool) {}
func (nopRecorder) RecordAPIURLMissing()        {}

// Store is the process-wide configuration holder. Build one at startup with
// New and hand it to every consumer. All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	source   Source
	logger   *slog.Logger
	recorder Recorder

	apiURL    string
	userID    string
	userIDSet bool
	auth      AuthConfig
}

// Option configures a Store.
type Option func(*Store)

// WithSource installs the late-bound configuration source.
func WithSource(src Source) Option {
	return func(s *Store) {
		s.source = src
	}
}

// WithDefaults seeds the auth group, typically from build-time values.
func WithDefaults(cfg AuthConfig) Option {
	return func(s *Store) {
		s.auth = cfg
	}
}

// WithLogger overrides the logger used for warnings and diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder attaches an activity recorder.
func WithRecorder(rec Recorder) Option {
	return func(s *Store) {
		if rec != nil {
			s.recorder = rec
		}
	}
}

// New returns a Store with every field empty unless options say otherwise.
func New(opts ...Option) *Store {
	s := &Store{
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAPIURL resolves the API URL to url + "/api". An empty url is ignored.
func (s *Store) SetAPIURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAPIURLLocked(url)
}

func (s *Store) setAPIURLLocked(url string) {
	if url == "" {
		return
	}
	s.apiURL = url + apiSuffix
}

// SetEnvData replaces the whole auth group with data. A nil data is ignored.
func (s *Store) SetEnvData(data *AuthConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setEnvDataLocked(data)
}

func (s *Store) setEnvDataLocked(data *AuthConfig) {
	if data == nil {
		return
	}
	s.auth = *data
}

// ConfigData returns a copy of the auth group. While any provider field is
// still empty, each call first tries to refill the group from the Source.
func (s *Store) ConfigData() AuthConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.auth.authIncomplete() && s.source != nil {
		published := s.source.AppConfig()
		s.setEnvDataLocked(published)
		s.recorder.RecordFallback(FallbackAuth, published != nil)
	}
	return s.auth
}

// APIURL returns the resolved API URL. When unset it first tries the Source;
// if the URL is still unknown a warning is logged and ok is false.
func (s *Store) APIURL() (url string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.apiURL == "" && s.source != nil {
		applied := false
		if published := s.source.AppConfig(); published != nil && published.APIURL != "" {
			s.setAPIURLLocked(published.APIURL)
			applied = true
		}
		s.recorder.RecordFallback(FallbackAPIURL, applied)
	}

	if s.apiURL == "" {
		s.logger.Warn("API URL not yet configured")
		s.recorder.RecordAPIURLMissing()
		return "", false
	}
	return s.apiURL, true
}

// UserID reads the active user from the Source on every call and stores it,
// clearing the stored value when the Source has none.
func (s *Store) UserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID, s.userIDSet = "", false
	if s.source != nil {
		s.userID, s.userIDSet = s.source.ActiveUserID()
		if !s.userIDSet {
			s.userID = ""
		}
	}
	s.recorder.RecordFallback(FallbackUser, s.userIDSet)
	s.logger.Info("active user", "user_id", s.userID, "set", s.userIDSet)
	return s.userID, s.userIDSet
}

// Snapshot returns the raw stored values without consulting the Source.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		APIURL:    s.apiURL,
		UserID:    s.userID,
		UserIDSet: s.userIDSet,
		Auth:      s.auth,
	}
}
