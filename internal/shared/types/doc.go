// Package types provides shared data structures for the PhishGuard agent.
//
// These types cross package boundaries: the remote client produces them,
// the navigation guard and the override manager interpret them, and the
// messaging router serialises them back to the extension.
//
// Core Types:
//   - Rating: SAFE, WARN or DANGER
//   - Analysis: verdict returned by the remote analysis service
//   - Info: supplementary cached verdict for a URL
//   - BlockOrigin: who imposed a block (none, user, system)
//   - TabID: browser tab identifier
//
// Example Usage:
//
//	rating, err := types.ParseRating("위험")
//	if err != nil {
//	    return err
//	}
//	if rating.Blocking() {
//	    // show the blocking overlay
//	}
package types
