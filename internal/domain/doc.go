// Package domain defines the types and contracts shared between the Pylon
// session layer and the secure-channel collaborator it drives, plus the
// error taxonomy returned across the session boundary.
//
// It contains plain types and interfaces only; implementations live in
// internal/wormhole, internal/rendezvous and internal/services.
package domain
