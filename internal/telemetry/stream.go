// Package telemetry generates the live biometric sample feed consumed
// during a workout and fans it out to registered observers.
package telemetry

import (
	"log"
	"math/rand/v2"
	"sync"
	"time"
)

// Sample is one unit of generated telemetry. Samples are transient; only
// their constituent values end up inside a finalized workout session.
type Sample struct {
	Timestamp      time.Time `json:"timestamp"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	HeartRate      int       `json:"heart_rate"`
	Steps          int       `json:"steps"`
}

// Observer receives every generated sample, in registration order.
type Observer func(Sample)

const (
	heartRateFloor   = 60
	heartRateCeiling = 180
	initialHeartRate = 70

	// DefaultInterval is the production tick period.
	DefaultInterval = time.Second
	// DefaultStopTimeout bounds how long Stop waits for the producer to exit.
	DefaultStopTimeout = time.Second
)

// stepDraw weights a single step at double the probability of a pause or a
// burst, which averages out near 1.25 steps per tick.
var stepDraw = [4]int{0, 1, 1, 2}

// Stream simulates a live sensor feed on a background goroutine. Start and
// Stop are safe to call from any goroutine; Start on a running stream is a
// no-op and Stop performs a bounded best-effort join, so callers must
// tolerate at most one trailing sample after Stop returns.
type Stream struct {
	mu        sync.Mutex
	running   bool
	done      chan struct{}
	observers map[int]Observer
	order     []int
	nextID    int

	interval    time.Duration
	stopTimeout time.Duration
	logger      *log.Logger

	// generation state, reset on every run
	heartRate int
	steps     int
	startedAt time.Time
}

// Option configures optional behaviour for a Stream.
type Option func(*Stream)

// WithInterval overrides the tick period. Tests use millisecond intervals.
func WithInterval(interval time.Duration) Option {
	return func(s *Stream) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithStopTimeout overrides the bounded-join timeout used by Stop.
func WithStopTimeout(timeout time.Duration) Option {
	return func(s *Stream) {
		if timeout > 0 {
			s.stopTimeout = timeout
		}
	}
}

// WithLogger overrides the logger used for observer failures and join timeouts.
func WithLogger(logger *log.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

// NewStream constructs an idle Stream.
func NewStream(opts ...Option) *Stream {
	s := &Stream{
		observers:   make(map[int]Observer),
		interval:    DefaultInterval,
		stopTimeout: DefaultStopTimeout,
		logger:      log.New(log.Writer(), "[telemetry] ", log.LstdFlags),
		heartRate:   initialHeartRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddObserver registers a callback invoked once per generated sample for the
// remainder of the current and all future runs. The returned func removes
// the observer again.
func (s *Stream) AddObserver(observer Observer) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = observer
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Subscribe registers a bounded channel observer. The consumer drains the
// channel on its own schedule; when the buffer is full the sample is dropped
// and counted, never blocking the producer. cancel removes the subscription
// and closes the channel.
func (s *Stream) Subscribe(buffer int) (samples <-chan Sample, cancel func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Sample, buffer)

	var once sync.Once
	remove := s.AddObserver(func(sample Sample) {
		select {
		case ch <- sample:
		default:
			samplesDropped.Inc()
		}
	})

	return ch, func() {
		once.Do(func() {
			remove()
			close(ch)
		})
	}
}

// Running reports whether the producer loop is active.
func (s *Stream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start resets cumulative generation state and launches the producer
// goroutine. Calling Start on a running stream is a silent no-op.
func (s *Stream) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.heartRate = initialHeartRate
	s.steps = 0
	s.startedAt = time.Now()

	go s.generate(s.done)
}

// Stop clears the run flag and waits for the producer to exit, bounded by
// the stop timeout. The join is best effort: on timeout the stream is still
// considered stopped and the condition is logged, not surfaced.
func (s *Stream) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(s.stopTimeout):
		s.logger.Printf("producer did not exit within %s, continuing", s.stopTimeout)
	}
}

func (s *Stream) generate(done chan struct{}) {
	defer close(done)

	for {
		s.mu.Lock()
		if !s.running || s.done != done {
			s.mu.Unlock()
			return
		}

		s.heartRate = clamp(s.heartRate+rand.IntN(6)-2, heartRateFloor, heartRateCeiling)
		s.steps += stepDraw[rand.IntN(len(stepDraw))]

		now := time.Now()
		sample := Sample{
			Timestamp:      now,
			ElapsedSeconds: now.Sub(s.startedAt).Seconds(),
			HeartRate:      s.heartRate,
			Steps:          s.steps,
		}
		observers := s.snapshotObservers()
		s.mu.Unlock()

		for _, observer := range observers {
			s.deliver(observer, sample)
		}
		samplesGenerated.Inc()
		lastSampleGauge.Set(float64(sample.Timestamp.Unix()))

		time.Sleep(s.interval)
	}
}

// deliver isolates observer failures: a panicking observer is logged and the
// remaining observers still receive the sample.
func (s *Stream) deliver(observer Observer, sample Sample) {
	defer func() {
		if r := recover(); r != nil {
			observerPanics.Inc()
			s.logger.Printf("observer panic: %v", r)
		}
	}()
	observer(sample)
}

// snapshotObservers copies the callbacks in registration order; callers must
// hold the mutex.
func (s *Stream) snapshotObservers() []Observer {
	out := make([]Observer, 0, len(s.order))
	for _, id := range s.order {
		if observer, ok := s.observers[id]; ok {
			out = append(out, observer)
		}
	}
	return out
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
