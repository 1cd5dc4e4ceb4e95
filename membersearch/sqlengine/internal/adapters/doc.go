// Package adapters provides the database adapters of the SQL search engine.
//
// Three connection types are supported: pgxpool.Pool (optionally with a replica pool),
// sql.DB and sqlx.DB. All of them present the same DBAdapter interface, so the engine
// builds and runs its queries without knowing the library underneath.
//
// Every error that crosses an adapter is classified into membersearch.ErrStoreUnavailable
// or membersearch.ErrStoreQueryRejected, see ClassifyError.
package adapters
