package schema

import "github.com/rs/zerolog"

// log defaults to a no-op logger, matching the teacher's "silent unless
// configured" stance for library code (client.Logger is similarly
// opt-in via client.WithLogger). SetLogger swaps it for a real sink,
// typically once at process startup.
var log = zerolog.Nop()

// SetLogger installs l as the package's schema-compilation logger.
func SetLogger(l zerolog.Logger) {
	log = l
}
