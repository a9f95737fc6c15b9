// Package devserver is an in-memory stand-in for the SocietyHub REST API.
//
// It implements the auth endpoints (login, refresh, register, profile,
// change-password and user administration) with HS256 JWTs and bcrypt
// password hashes, and serves every other resource path as a generic JSON
// collection. It exists so the client can be run and tested without the
// real backend; nothing is persisted.
package devserver
