// Package postgres implements the store interfaces on PostgreSQL through
// the pgx stdlib driver. Stores accept a store.DBTX so they run equally on a
// *sql.DB or inside a *sql.Tx.
//
// Schema migrations are embedded and applied with goose; see Migrate.
package postgres
