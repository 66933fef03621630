// Package gateway exposes component exports as HTTP endpoints. Registration
// derives one POST route per exported function, dispatch bridges JSON bodies
// to typed invocations under an exclusive instance lease, and the server
// wires the routes together with the OpenAPI document and optional Swagger
// UI.
package gateway
