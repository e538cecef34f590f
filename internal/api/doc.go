// Package api implements the HTTP client adapter for the book-generation backend.
//
// [Client] wraps [net/http] with the three concerns every caller shares:
//
//   - Credential attachment: the backend authenticates with session cookies,
//     held in the client's cookie jar. Signing in populates the jar; no
//     bespoke tokens are ever attached.
//   - Timeouts: a short default for simple reads and a long timeout for
//     generation and download calls, overridable per call via [WithTimeout].
//   - Error normalization: every transport or server failure becomes an
//     [*Error] with an [ErrorKind] from the fixed taxonomy (unauthorized,
//     forbidden, not found, rate limited, validation, server, client,
//     network). Callers branch on kinds, never on raw status codes.
//
// Human-readable messages are extracted from the backend's error payloads,
// trying the top-level "error" key, then "detail", then flattening a
// field → messages validation map.
package api
