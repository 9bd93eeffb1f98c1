// Package store defines the persistence interfaces the core depends on:
// users, decks, cards, card schedules, quiz sessions, and quiz results.
// Implementations live in internal/platform; the core never touches a
// database directly. Schedule updates are version-conditioned so concurrent
// reviewers of the same card follow a read-compute-retry discipline instead
// of merging states.
package store
