// Package fanout runs one producer and N consumers over a broadcast ring.
//
// The producer emits a repeating byte sequence in the printable range and
// each consumer writes every value it receives, one byte at a time, to its
// own output file. A run ends when its context deadline passes, when the
// optional value limit is reached, or when any participant fails.
//
//	report, err := fanout.Run(ctx, fanout.Options{
//		Config:   cfg,
//		Registry: registry,
//		Monitor:  monitor,
//		Logger:   logger,
//	})
package fanout
