package audit

import "errors"

var ErrNotOpen = errors.New("audit log is not open")
