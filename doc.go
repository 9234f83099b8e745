// Package ringcast is a single-producer, multi-consumer broadcast ring and
// the fan-out tool built on top of it.
//
// # Philosophy
//
// Every consumer sees every value. The ring is a fixed-capacity circle of
// slots; a slot is reusable only once each reader registered when it was
// written has read it. Slow readers push back on the producer instead of
// losing data, and nothing is ever dropped unless the ring is explicitly
// built in queue mode with an overflow policy.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│          cmd/ringcast               │  Flags, env, stdin sizing
//	│   (config, logging, /metrics)       │  Signal handling
//	└─────────────────────────────────────┘
//	           ↓ runs
//	┌─────────────────────────────────────┐
//	│            fanout                   │  Producer, consumers,
//	│   (sequence, sinks, run report)     │  health, errgroup
//	└─────────────────────────────────────┘
//	           ↓ shares
//	┌─────────────────────────────────────┐
//	│        pkg/broadcast                │  Ring[T], Reader[T],
//	│   (broadcast and queue modes)       │  statistics, metrics
//	└─────────────────────────────────────┘
//
// Supporting packages:
//
//   - config: layered configuration (defaults, file, RINGCAST_* env, flags)
//   - errors: transient / invalid / fatal classification
//   - health: component health and aggregation from reader lag
//   - metric: Prometheus registry and the /metrics and /health endpoints
//   - pkg/retry: backoff used by the poll put strategy and sink opening
//
// # Fan-Out
//
//	                ┌─────────────┐
//	                │  Producer   │
//	                │ 71,102,34.. │
//	                └──────┬──────┘
//	                       │
//	                 broadcast.Ring
//	                       │
//	     ┌─────────────────┼─────────────────┐
//	     ↓                 ↓                 ↓
//	┌──────────┐     ┌──────────┐      ┌──────────┐
//	│consumer-0│     │consumer-1│      │consumer-N│
//	└──────────┘     └──────────┘      └──────────┘
//	 file0.txt        file1.txt         fileN.txt
//
// Every output file of a completed run holds the same bytes: a prefix of
// the producer's sequence, one byte per value.
//
// # Usage
//
//	# Capacity and reader count from stdin
//	printf '8\n4\n' | ./bin/ringcast --duration 2s
//
//	# Fully from flags, with metrics exposed
//	./bin/ringcast --capacity 64 --readers 8 --limit 100000 --metrics-port 9090
//
//	# From a config file, validated only
//	./bin/ringcast --config configs/ringcast.yaml --validate
package ringcast
