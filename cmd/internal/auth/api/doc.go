// Package authapi exposes the authentication HTTP surface: signup,
// signin, signout, the current-user probe, and the RequireSession
// middleware that gates protected routes.
//
// Session tokens travel in an HttpOnly cookie; the Authorization
// header is accepted as a fallback for non-browser clients. Handlers
// translate the session service's error taxonomy onto HTTP statuses
// and never leak which half of a credential pair was wrong.
package authapi
