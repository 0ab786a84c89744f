package contest

import "errors"

// ErrStorage marks failures of the persistent store. The whole operation is safe to retry.
var ErrStorage = errors.New("storage error")
