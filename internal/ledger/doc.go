// Package ledger implements the structural edits of a bill.
//
// Every operation takes a bill by value and returns a new bill; the input is
// never modified. Operations addressing an item or participant that does not
// exist return the bill unchanged with a nil error. Invalid input (blank
// names, non-positive prices or quantities, negative rates) is rejected with
// one of the sentinel errors below and also leaves the bill unchanged.
package ledger
