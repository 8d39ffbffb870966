// Package fetch downloads remote spectra into a local cache directory.
//
// Cached files are named after a hash of their URL, so repeated fetches of
// the same URL are served from disk without network access. Concurrent
// fetches of one URL, from this or other processes, are serialised with a
// lock file next to the cache entry. An optional [BlobCache] (Redis) sits
// between the disk and the network so several hosts can share downloads.
package fetch
