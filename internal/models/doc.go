// Package models defines domain entities and persistence interfaces for the inkwell book client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs mirroring the backend's JSON payloads
//   - [User] : The authenticated identity returned by the users endpoints
//   - [Book] : A generated book with status lifecycle and cover options
//   - [Cover] : A rendered cover candidate for a book
//   - [Catalog] : The creation catalog of domains, sub-niches and page lengths
//   - [SubscriptionPlan], [Subscription], [PaymentRecord] : Billing surface
//
// 2. Persistent Entities: database-backed models for the local cache
//   - [CachedBook] : A locally cached copy of a server book for offline listing
//
// Persistent entities implement the [Model] interface providing ID generation,
// timestamps, and validation. The [Repository] interface defines standard CRUD
// operations for database access.
//
// The [Result] type is the return convention at store and session boundaries:
// operations report success or a human-readable error instead of propagating
// transport failures to the caller.
package models
