package ledger

import "time"

// nowFunc is a seam for tests that pin the current date.
var nowFunc = time.Now
