package importer

import "time"

// nowFunc is swapped in tests to pin the year hint.
var nowFunc = time.Now
