// Package httpapi exposes the offline-sync core to the register front end
// over a local JSON HTTP API built on gin.
package httpapi
