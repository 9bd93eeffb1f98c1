// Package domain defines the core business entities of the recall API:
// decks, cards, per-card review schedules, quiz sessions, and quiz results.
// Entities are immutable values; all schedule mutation goes through the
// srs subpackage and all session mutation through the session package.
package domain
