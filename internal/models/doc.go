// Package models defines the core domain values for splitledger.
//
// # Bill model
//
// An itemized bill is described by immutable value objects:
//   - LineItem / ItemAssignment: the items and who splits them
//   - Extras: tax, tip, fees and discounts layered on top of the items
//   - AllocationRule / RoundingConfig: how extras are divided and how
//     per-person totals are rounded and reconciled
//
// The calculator package consumes a bill model and produces one
// ParticipantBreakdown per participant plus a flat per-person amount map.
//
// # Trip aggregation
//
// Expense records (equal, weighted or itemized splits) and recorded
// Settlements make up a trip's history. PersonSummary and Transfer values are
// always derived from that history per currency and are never authoritative
// state of their own.
//
// # Design principles
//
//  1. All money values are shopspring decimals; no floats in money math.
//  2. Values are immutable once created: edits replace, never patch.
//  3. Relationships use ID strings, not pointers, to avoid cycles.
//  4. Currency is an opaque code plus a precision; nothing here converts
//     between currencies.
package models
