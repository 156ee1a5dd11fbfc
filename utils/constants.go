// File: utils/constants.go
package utils

import "time"

// FeedPrefetchPrefix is the prefix used for Redis prefetch cache keys.
const FeedPrefetchPrefix = "feed:prefetch:"

// AnonymousViewer is the cache/session key used when no viewer is signed in.
const AnonymousViewer = "anon"

// RedisPingTimeout bounds startup connectivity checks.
const RedisPingTimeout = 2 * time.Second
