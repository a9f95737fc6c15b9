// Package cli provides the interactive SocietyHub command-line client.
//
// The App wires the auth and page services, the settings store and the
// session cache behind a small REPL. Typical flow: log in (or register as a
// resident), browse a page with its saved filters, search term and sort
// order, and adjust those preferences; they persist across runs.
//
// When a request fails because the session could not be refreshed the REPL
// reports it and returns to the login prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
