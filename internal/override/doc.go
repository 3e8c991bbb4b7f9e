// Package override manages the client's personal block list: blocking a URL
// (report plus override), unblocking it when the block is the user's own,
// listing blocked URLs and building the popup status.
//
// Who imposed a block decides whether it can be lifted. See Classify.
package override
