// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package storageapi is the client for the object storage HTTP service.
//
// Every operation is described once by an Operation value. A RequestFactory
// turns call parameters into a Request, a Pipeline runs it through the
// configured Middleware and Transport, and a ResponseProcessor maps the
// Response to a typed result or error by status code.
//
// Three calling conventions share that path:
//
//	api := storageapi.NewDefaultAPI(cfg)         // blocking calls
//	obs := storageapi.NewObservableAPI(cfg)      // *Observable[T] results
//	obj := storageapi.NewObjectParamAPI(cfg)     // request structs
//
// Errors returned from a call are one of *MissingParameterError (nothing was
// sent), *APIError (a declared error status), *UnknownStatusError,
// *DecodeError, *AbortedError, or a transport error.
package storageapi

// Ptr returns a pointer to v, for optional parameters
func Ptr[T any](v T) *T {
	return &v
}
