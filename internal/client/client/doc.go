// Package client talks to a Lentik server on behalf of the CLI.
//
// HTTPClient logs in over the REST API, keeps the issued credential and
// opens family or chat WebSocket subscriptions with it. Common failures are
// exposed as sentinel errors (ErrUnavailable, ErrUnauthorized, ErrForbidden)
// that callers match with errors.Is.
package client
