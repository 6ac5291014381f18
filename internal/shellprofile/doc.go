// Package shellprofile builds and recognizes the PATH-extension block the
// installer keeps in the user's shell profile.
//
// The block is a marker comment plus one export line. All functions are
// pure transforms over profile content; reading and atomically rewriting
// the file is the caller's business.
package shellprofile
