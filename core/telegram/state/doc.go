// Package state keeps per-subject conversation state for multi-step flows.
// It knows nothing about individual flows; flow and step values are opaque here.
package state
