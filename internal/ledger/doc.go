// Package ledger persists pending message retractions.
//
// The sqlite file is the single source of truth for what still has to be
// deleted: rows are inserted once per successful delivery and removed once
// per retraction attempt, so a restart can never lose or duplicate pending
// work. There is no update path.
package ledger
