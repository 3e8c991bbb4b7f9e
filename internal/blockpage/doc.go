/*
Package blockpage builds, parses and renders the page a dangerous tab is
redirected to.

The page URL carries its state in the query string:

	http://127.0.0.1:8765/blocked?reason=...&url=...&score=92&official=...

Reason and official URL come from the analysis service and are treated as
untrusted: Render strips all markup with a bluemonday strict policy and lets
html/template escape the remaining text. The official URL is only linked when
it is an absolute http(s) URL.
*/
package blockpage
