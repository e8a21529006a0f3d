package capture

import "errors"

// ErrInputUnreadable marks a capture file that cannot be opened at all, or
// whose format cannot be recognised. It is fatal for the task that hit it;
// callers log it and move on to the next input rather than aborting a
// whole run.
var ErrInputUnreadable = errors.New("capture input unreadable")
