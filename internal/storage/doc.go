// Package storage provides SQLite-based persistence for the storefront.
//
// The storage layer manages:
//   - Users and supplier profiles
//   - Categories and products
//   - Per-product inventory counters
//   - Orders with their items, payment and shipping records
//
// # Database Schema
//
// Tables:
//   - users, suppliers: accounts and the supplier profile owned by a user
//   - categories, products: the catalog; prices are exact decimal strings
//   - inventory: one non-negative quantity per product
//   - orders, order_items, payments, shipping: the order aggregate
//   - schema_version: applied migrations, ordered by semantic version
//
// # Transactions
//
// Every write that must land as a unit goes through RunAtomically. The
// callback receives a Store bound to the transaction; all reads inside it
// must use that Store:
//
//	err := db.RunAtomically(ctx, func(tx storage.Store) error {
//	    if _, err := tx.AdjustInventory(ctx, productID, -2); err != nil {
//	        return err
//	    }
//	    return tx.CreateOrder(ctx, order)
//	})
//
// The transaction rolls back when the callback returns an error. When SQLite
// reports the database as busy the whole callback is run again with
// exponential backoff.
//
// # Stock Updates
//
// AdjustInventory is a single conditional UPDATE: it succeeds only when the
// resulting quantity stays non-negative and returns ErrStockUnderflow
// otherwise. Two concurrent decrements can never both pass a check that only
// one of them fits. MarkOrderShipped is conditional on the PENDING status in
// the same way.
//
// # Build Tags
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite
//
//     CGO_ENABLED=0 go build ./...
//
// CGO build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo" ./...
package storage
