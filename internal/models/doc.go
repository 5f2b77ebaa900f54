// Package models defines the core domain models for chaintab.
//
// # Models
//
//   - Group: a named collection of priced line items owned by one user
//   - Item: one payable line item inside a group, addressed by position
//   - User: a registered account; the authenticated user id is the caller
//     identity recorded on group ownership and direct payments
//   - Event: an append-only notification record, written for off-core
//     indexing and never read back
//
// # Design Principles
//
//  1. Group ids are monotonically increasing integers assigned by the store
//     and never reused.
//  2. Items are addressed by (group id, index); two items may share a name
//     and remain distinct line items.
//  3. Prices and payment amounts are unsigned integers in minor currency
//     units. There are no fractional amounts anywhere in the system.
//  4. Caller identity is always an explicit parameter; nothing in the core
//     reads identity from ambient state.
package models
