// Package api exposes identification over a small local HTTP surface so a
// phone or browser front-end can submit photos.
//
// Routes are served by a chi router. Every request is stamped with a request
// ID (echoed in X-Request-ID) and the "api" source so history entries and log
// lines correlate with the client call.
package api
