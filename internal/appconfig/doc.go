// Package appconfig holds the configuration a hosted front-end needs: the
// resolved API base URL and the authentication-provider settings. Values come
// from explicit setters, from build-time defaults, or lazily from a late-bound
// Source that may not be available until some time after startup.
package appconfig
