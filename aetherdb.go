// Package aetherdb executes a backend-neutral query AST against relational,
// REST filter-protocol, and document-store backends through one driver
// interface.
//
// Statements are built with the engine/ast package, compiled by a pure
// per-backend translator, and executed by a DatabaseDriver. Results come
// back as Rows with uniform type coercion, so calling code reads values the
// same way regardless of which backend answered.
//
// A typical setup:
//
//	cfg, err := aetherdb.LoadConfig("aetherdb.yaml")
//	if err != nil {
//		log.Fatal().Err(err).Msg("loading config")
//	}
//	driver, err := aetherdb.Open(ctx, cfg, logger)
//	if err != nil {
//		log.Fatal().Err(err).Msg("opening backend")
//	}
//	defer driver.Close()
//	if err := aetherdb.Initialize(driver); err != nil {
//		log.Fatal().Err(err).Msg("registering driver")
//	}
package aetherdb
