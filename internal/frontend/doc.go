// Package frontend serves the single-page app and publishes its runtime
// configuration as page globals (window.appConfig, window.activeUserId),
// either injected into index.html or through /config.js and /api/config.
package frontend
