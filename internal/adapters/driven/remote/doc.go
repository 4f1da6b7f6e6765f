// Package remote implements the REST backend ports (driven.RemoteAPI).
//
// Requests carry a bearer token through an oauth2 static token source and
// are throttled by a token bucket. Non-2xx responses become *APIError;
// transport failures wrap domain.ErrRemoteUnreachable.
package remote
