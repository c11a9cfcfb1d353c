// Package app contains the generator's application logic: configuration,
// manifest discovery, concurrent expansion of manifests into Go files and
// diagnostics reporting. It is decoupled from any specific entrypoint; the
// CLI only translates flags into a Config.
package app
