// Package busk provides an embeddable tipping ledger for live street
// performances.
//
// Busk is designed as a library, not a service. Import it directly into
// your Go application and wire it to a store and a bank. It provides:
//
//   - Performer registration with caller-identity ownership
//   - Performance sessions with open/closed lifecycle
//   - Tip settlement with a configurable platform fee in basis points
//   - Dense, counter-derived record ids with no gaps
//   - Atomic value movement through a pluggable bank
//   - Pluggable stores (memory, SQLite, PostgreSQL, MongoDB)
//   - Lifecycle plugins for auditing and metrics
//
// # Quick Start
//
// Create an engine with your preferred store and a bank:
//
//	import (
//	    "github.com/xraph/busk"
//	    "github.com/xraph/busk/bank"
//	    "github.com/xraph/busk/id"
//	    "github.com/xraph/busk/store/memory"
//	)
//
//	platform := id.NewAccountID()
//	engine := busk.New(memory.New(), bank.NewInMemory(), platform)
//
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
// # Core Concepts
//
// Performers are registered by their owning account:
//
//	performerID, err := engine.RegisterPerformer(ctx, owner, "Jane Smith", "Saxophone", "Downtown")
//
// Sessions are the unit a tip attaches to; only open sessions accept tips:
//
//	sessionID, err := engine.StartSession(ctx, owner, performerID, "Times Square")
//
// Tips move value in two legs, net to the performer's owner and fee to the
// platform, and both legs either land together or not at all:
//
//	tipID, err := engine.SendTip(ctx, tipper, sessionID, 2_000_000, "great set!")
//
// The fee rate is expressed in basis points and rounds in the performer's
// favor. Only the platform owner may change it:
//
//	err := engine.SetPlatformFee(ctx, platform, 250) // 2.5%
//
// # Errors
//
// Failures are reported through sentinel errors and classified with
// IsNotFound, IsInvalidAmount, IsInvalidState and IsValidation. A failed
// operation never leaves partial state behind.
package busk
