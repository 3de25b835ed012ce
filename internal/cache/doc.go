// Package cache keeps parsed directory listings for their 24-hour
// freshness window so repeat browsing does not refetch unchanged remote
// indexes.
//
// The cache is a URL-keyed document persisted whole into a blob bucket on
// every mutation. Expired listings become invisible immediately but are
// only removed by the shutdown sweep. Loading tolerates the legacy
// persisted shape that named the entries field "content".
package cache
