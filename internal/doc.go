// Package internal holds secret generation and encoding helpers shared by
// the accesscore root package and its stores. Nothing here is part of the
// public API; plaintext secrets never leave this package except through the
// one-time issuance path.
package internal
