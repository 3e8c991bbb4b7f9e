/*
Package guard implements the Navigation Guard: the decision made for every
page a tab loads.

# Phases

 1. Input check: only absolute http(s) URLs outside the extension and the
    block page are analyzed. Anything else resolves SAFE with Skipped set.
 2. Block list: a listed URL is DANGER at once and the full analysis is
    skipped.
 3. Full analysis: the remote verdict is returned as is.

Any remote failure in either phase fails open to a WARN advisory with OK
false. Evaluate never returns an error.

# Terminal actions

With an origin tab, DANGER shows the blocking overlay and, after
OverlayDelay, redirects the tab to the block page (or closes it). WARN shows
a non-blocking overlay. SAFE does nothing. The popup path passes a nil tab
and never mutates one.

# Concurrency

Each tab has at most one pending evaluation. A duplicate (tab, url) inside
the debounce window waits on the running one instead of starting another. A
newer navigation, TabNavigated or TabClosed supersedes the pending state
and its terminal actions are dropped. ErrTabGone from Tabs is expected and
swallowed.
*/
package guard
