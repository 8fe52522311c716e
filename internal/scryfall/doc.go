// Package scryfall is a small client for the Scryfall card API.
//
// Only the lookups needed to print proxies are implemented: a card by exact
// (or fuzzy) name, a specific printing by set code and collector number, and
// raw image downloads. Every request goes through a shared rate limiter;
// Scryfall asks clients to keep 50-100 ms between calls.
package scryfall
