package broadcast

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks ring activity. It is always collected.
type Statistics struct {
	puts          int64
	rejectedPuts  int64
	reads         int64
	pops          int64
	drops         int64
	registrations int64
	departures    int64
	credited      int64

	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Put records a value written into the ring.
func (s *Statistics) Put() {
	atomic.AddInt64(&s.puts, 1)
}

// RejectedPut records a non-blocking put that found the lock busy or the slot unconsumed.
func (s *Statistics) RejectedPut() {
	atomic.AddInt64(&s.rejectedPuts, 1)
}

// Read records one reader consuming one slot.
func (s *Statistics) Read() {
	atomic.AddInt64(&s.reads, 1)
}

// Pop records a queue-mode removal.
func (s *Statistics) Pop() {
	atomic.AddInt64(&s.pops, 1)
}

// Drop records a value discarded by the overflow policy.
func (s *Statistics) Drop() {
	atomic.AddInt64(&s.drops, 1)
}

// Registered records a reader joining.
func (s *Statistics) Registered() {
	atomic.AddInt64(&s.registrations, 1)
}

// Departed records a reader leaving and the number of unvisited slots it released.
func (s *Statistics) Departed(credited int) {
	atomic.AddInt64(&s.departures, 1)
	atomic.AddInt64(&s.credited, int64(credited))
}

// UpdateSize updates the current ring occupancy.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Puts returns the total number of values written.
func (s *Statistics) Puts() int64 {
	return atomic.LoadInt64(&s.puts)
}

// RejectedPuts returns the number of non-blocking puts that did not write.
func (s *Statistics) RejectedPuts() int64 {
	return atomic.LoadInt64(&s.rejectedPuts)
}

// Reads returns the total number of slot reads across all readers.
func (s *Statistics) Reads() int64 {
	return atomic.LoadInt64(&s.reads)
}

// Pops returns the total number of queue-mode removals.
func (s *Statistics) Pops() int64 {
	return atomic.LoadInt64(&s.pops)
}

// Drops returns the total number of dropped values.
func (s *Statistics) Drops() int64 {
	return atomic.LoadInt64(&s.drops)
}

// Registrations returns how many readers have registered.
func (s *Statistics) Registrations() int64 {
	return atomic.LoadInt64(&s.registrations)
}

// Departures returns how many readers have unregistered.
func (s *Statistics) Departures() int64 {
	return atomic.LoadInt64(&s.departures)
}

// Credited returns how many slot reads were credited by departing readers.
func (s *Statistics) Credited() int64 {
	return atomic.LoadInt64(&s.credited)
}

// CurrentSize returns the occupancy recorded by the last mutation.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the highest occupancy the ring has reached.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// Throughput returns the average number of puts per second.
func (s *Statistics) Throughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.Puts()) / elapsed.Seconds()
}

// RejectRate returns rejected puts as a fraction of all put attempts (0.0 to 1.0).
func (s *Statistics) RejectRate() float64 {
	rejected := s.RejectedPuts()
	attempts := s.Puts() + rejected
	if attempts == 0 {
		return 0.0
	}
	return float64(rejected) / float64(attempts)
}

// Uptime returns how long the ring has existed.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// StatsSummary is a point-in-time copy of Statistics.
type StatsSummary struct {
	Puts          int64         `json:"puts"`
	RejectedPuts  int64         `json:"rejected_puts"`
	Reads         int64         `json:"reads"`
	Pops          int64         `json:"pops"`
	Drops         int64         `json:"drops"`
	Registrations int64         `json:"registrations"`
	Departures    int64         `json:"departures"`
	Credited      int64         `json:"credited"`
	CurrentSize   int64         `json:"current_size"`
	MaxSize       int64         `json:"max_size"`
	Throughput    float64       `json:"throughput"`
	RejectRate    float64       `json:"reject_rate"`
	Uptime        time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Puts:          s.Puts(),
		RejectedPuts:  s.RejectedPuts(),
		Reads:         s.Reads(),
		Pops:          s.Pops(),
		Drops:         s.Drops(),
		Registrations: s.Registrations(),
		Departures:    s.Departures(),
		Credited:      s.Credited(),
		CurrentSize:   s.CurrentSize(),
		MaxSize:       s.MaxSize(),
		Throughput:    s.Throughput(),
		RejectRate:    s.RejectRate(),
		Uptime:        s.Uptime(),
	}
}
