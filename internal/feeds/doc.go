// Package feeds fetches and parses RSS and Atom feeds for the relay.
//
// Fetching is conditional: ETag and Last-Modified values from previous
// polls are replayed so unchanged feeds answer 304 without a body.
// Parsed items carry a stable dedup key derived from the feed URL and
// the entry's identifying fields.
package feeds
