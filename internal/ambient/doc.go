// Package ambient provides appconfig.Source implementations: values published
// by the hosting environment that may appear, change, or disappear while the
// process runs. Every source is re-read on each call.
package ambient
