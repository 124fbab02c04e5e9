// Package data implements the offline dataset pipeline: downloading the raw
// movie CSV, converting it into chat-format training examples, and loading it
// into the retrieval stores.
package data
