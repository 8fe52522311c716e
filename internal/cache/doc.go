// Package cache stores downloaded card images on disk, one file per card.
//
// Entries are keyed by the normalized card name (see [Key]). There is no
// expiry or eviction: once an image has been fetched it is reused until the
// cache is cleared with "proxymancer cache clear".
package cache
