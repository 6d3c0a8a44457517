// Package models defines the core domain models for Expensease.
//
// # Current Models
//
//   - Expense: a shared expense with per-participant split rows
//   - LineItem: individual line items on an expense (manual or receipt-scanned)
//   - SplitRow: one participant's owe/pay obligation for an expense
//   - Settlement: a payment between participants that clears debt
//   - Group: a reusable participant list that owns expense history
//   - User: a registered account
//   - PaymentMethod: a user's saved payment account
//
// # Design Principles
//
//  1. All monetary values are money.Money in integer minor units, never floats
//  2. Use ID strings instead of pointers for relationships to avoid cycles
//  3. Split rows are computed by internal/calculator and stored verbatim; they are
//     immutable once the expense is saved
package models
