// Package store persists users, plans and subscriptions.
//
// Postgres is the production implementation on a pgx pool. Memory keeps
// everything in process and backs the HTTP tests. Both satisfy
// subscription.Store and map database conditions to the subscription
// package's sentinel errors.
package store
