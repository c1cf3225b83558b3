package commands

import "time"

// nowFunc is swapped in tests to pin year defaults.
var nowFunc = time.Now
