// Package core contains the shared domain types used across Taskhive: the
// conversation transcript exchanged between the manager loop and its worker
// agents, the tri-state orchestration outcome returned to callers, document
// retrieval matches and the per-request user context.
//
// The types here are deliberately free of provider or transport concerns so
// that the manager, agents and retrieval engine can depend on them without
// pulling in HTTP or SDK dependencies.
package core
