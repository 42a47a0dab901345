package busk

import "github.com/xraph/busk/types"

// Re-export common types for convenience so users don't have to import types package.

// BasisPoints is re-exported from types package.
type BasisPoints = types.BasisPoints

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export fee constants
const (
	DefaultPlatformFee = types.DefaultPlatformFee
	MaxPlatformFee     = types.MaxPlatformFee
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
