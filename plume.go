// Package plume is the root package for Plume, the Firebird Suite's
// full-stack application scaffolder.
//
// Plume stamps out a conventionally-structured web application from an
// embedded template tree, then grows it incrementally with generators
// (api routers, pages, components, cells, test factories, request tests)
// that stay consistent with the choices made at scaffold time.
//
// The CLI lives in cmd/plume; the engine packages live under internal/.
package plume

// Version is the current Plume release version.
const Version = "0.3.0"
