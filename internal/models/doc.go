// Package models defines the core domain models for Dutchpay.
//
// # Aggregate
//
// Bill is the aggregate root. It owns the participant registry, the item
// catalog (with the per-item share matrix), the bill settings, and the
// lifecycle status. Every engine operation takes a Bill, mutates it in
// place, and the caller persists the whole aggregate afterwards.
//
// # Money
//
// All monetary amounts and percentages are shopspring decimals, never
// floats. Amounts are rounded to the minor unit of the bill's currency
// only when the allocation engine writes them; models never round.
//
// # Design principles
//
//  1. One writer per field group: the share matrix shape belongs to the
//     structural-sync code, share amounts to the allocation engine, the
//     status field to the lifecycle controller. Models carry no behavior
//     that crosses those lines.
//  2. Avoid circular references: relationships use ID strings, not
//     pointers.
//  3. The aggregate is serializable as-is: a Bill round-trips through
//     encoding/json and that JSON document is what the store persists.
package models
