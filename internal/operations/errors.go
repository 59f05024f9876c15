package operations

import "errors"

// ErrUpstream marks a record-store read failure. Cross-referencing needs all
// three record families, so the request fails whole rather than returning a
// partial view.
var ErrUpstream = errors.New("record store unavailable")
