// Package logging configures structured slog output for moodcue.
//
// It builds loggers from configuration (console or JSON format, optional
// log-file output alongside stdout/stderr) and supplies the attribute
// helpers and canonical field names the rest of the codebase uses. Obtain
// component-scoped loggers through NewComponentLogger so every record
// carries a component attribute, and use NewNop in tests that do not care
// about log output.
package logging
