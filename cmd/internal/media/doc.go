// Package media stores user-uploaded images (avatars, cover images) in an
// S3-compatible object store and hands back publicly reachable URLs.
//
// Keys are fresh time-ordered ULIDs under a per-kind prefix
// (avatars/, covers/), so uploads never collide and never overwrite.
package media
