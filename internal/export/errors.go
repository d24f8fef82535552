package export

import "errors"

// ErrNoRun is returned when Export is called without a run or report.
var ErrNoRun = errors.New("export: run has no report")
