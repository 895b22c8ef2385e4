// Package relay polls configured feeds and forwards new entries to a
// Discord webhook. A feed's first poll seeds the seen set without
// posting so a fresh database does not flood the channel; later polls
// post unseen entries oldest-first, capped per run, and record each
// entry only after the webhook accepts it.
package relay
