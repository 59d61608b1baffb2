// Package models defines the core domain models for billsplit.
//
// # Stored Models
//
// The following models make up the persisted state:
//   - Bill: one shared-expense session with its settings, participants and items
//   - Participant: a person who can be assigned to items on a bill
//   - LineItem: one dish on the bill with unit price, quantity and assignments
//   - Snapshot: the ordered bill collection plus the active bill ID
//
// # Derived Models
//
// BillSummary and ParticipantShare are computed by the calculator package from
// a Bill. They are never stored and have no identity of their own.
//
// # Design Principles
//
//  1. Relationships use ID strings, never pointers
//  2. A Bill is treated as a value: mutations return a new Bill (see Clone)
//  3. Every assignment must reference a participant of the same bill
package models
