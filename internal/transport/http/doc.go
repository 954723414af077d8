// Package http implements the HTTP handlers for the xmlsheet service.
// Handlers stay thin: they parse requests, delegate to the service
// layer, and translate errors into RFC 7807 problem documents.
//
// A request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → convert pipeline
//
// The conversion endpoint accepts the XML document in several forms so
// that scripted clients, browsers, and curl one-liners all work without
// special casing on their side.
package http
