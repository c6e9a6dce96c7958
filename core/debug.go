package core

// DebugWriter receives one-line event traces from the controller. It runs
// on the bus layer's event context, so implementations must be cheap and
// non-blocking; slow sinks should queue and drain elsewhere. The default
// discards everything.
type DebugWriter func(string)

func nopDebug(string) {}
