// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the internal task service, translating HTTP concerns to business
// operations. The scheduler does not go through this layer.
package api
