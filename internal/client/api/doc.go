// Package api wraps the SocietyHub REST endpoints on top of the HTTP facade.
//
// AuthAPI covers /auth/*. Resource is a uniform CRUD wrapper for the
// router-backed collections (notices, visitors, events, ...), and
// Resources binds one Resource per page name. List endpoints may answer
// either a paginated {"results": [...]} object or a bare array; both are
// accepted.
package api
