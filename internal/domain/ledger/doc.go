// Package ledger holds the bill item-payment rules: how order lines are
// identified and grouped for display, how recorded payments are matched back
// to the lines that still exist, how a payment request is spread over those
// lines, and how a bill's status follows from all of that.
//
// Everything here is pure. Callers load the bill with its orders, call into
// this package, and persist what comes back.
package ledger
