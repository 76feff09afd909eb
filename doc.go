// Package easyacumatica generates typed Go client libraries for the
// contract-based REST API of Acumatica ERP.
//
// The API exposes thousands of business-entity types through a remote
// OpenAPI schema. This module ingests that schema, synthesizes runtime
// entity descriptors from it, and emits deterministic static type stubs
// that mirror the synthesized shapes:
//
//	raw swagger.json
//	    └─ schema.Parse        normalized entity/field/action definitions
//	        ├─ model.Synthesize    runtime structural types (cycle-safe)
//	        └─ stubgen.Emit        byte-stable Go type stubs
//
// Query construction lives in the odata package, the HTTP session layer in
// client, and the stub-generation front-end under cmd/easy-acumatica.
//
// This root package holds the error taxonomy shared by all subpackages.
package easyacumatica
