package speech

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithCacheDir sets the directory for the persistent audio cache. Empty
// keeps the cache in memory only.
func WithCacheDir(dir string) MouthOption {
	return func(m *Mouth) {
		m.cacheDir = dir
	}
}

// WithDiskWrite controls whether new cache entries are written to disk.
// Existing entries are read either way.
func WithDiskWrite(enabled bool) MouthOption {
	return func(m *Mouth) {
		m.diskWrite = enabled
	}
}

// Mouth serializes speech: queue, synthesize, play. Only one cue speaks
// at a time and higher priorities go first.
type Mouth struct {
	tts    Synthesizer
	player AudioPlayer
	log    *logger.Logger
	cache  *AudioCache

	cacheDir  string
	diskWrite bool

	mu       sync.Mutex
	queue    []Request
	speaking bool
	notify   chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewMouth creates a speech dispatcher.
func NewMouth(tts Synthesizer, player AudioPlayer, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		tts:       tts,
		player:    player,
		log:       log,
		notify:    make(chan struct{}, 1),
		diskWrite: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cache = NewAudioCache(tts.Voice(), m.cacheDir, m.diskWrite, log)
	return m
}

// Say queues text at the given priority. Non-blocking. Queuing anything
// at PriorityNormal or above drops pending low-priority items.
func (m *Mouth) Say(text string, priority Priority) {
	if text == "" {
		return
	}
	m.mu.Lock()
	if priority >= PriorityNormal {
		n := 0
		for _, r := range m.queue {
			if r.Priority > PriorityLow {
				m.queue[n] = r
				n++
			}
		}
		m.queue = m.queue[:n]
	}
	m.queue = append(m.queue, Request{Text: text, Priority: priority, QueuedAt: time.Now()})
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Interrupt clears the queue and cuts off the cue being played.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.queue = m.queue[:0]
	m.mu.Unlock()
	m.player.Stop()
}

// QueueLen returns the number of pending cues.
func (m *Mouth) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// IsSpeaking reports whether a cue is being synthesized or played.
func (m *Mouth) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// Start begins the speech goroutine. Non-blocking.
func (m *Mouth) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.notify:
				m.drain(ctx)
			}
		}
	}()
	m.log.Info("mouth started (voice=%s)", m.tts.Voice())
}

// Stop cuts off playback and waits for the speech and prefetch
// goroutines to exit.
func (m *Mouth) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.player.Stop()
	m.wg.Wait()
	m.log.Info("mouth stopped")
}

func (m *Mouth) drain(ctx context.Context) {
	for ctx.Err() == nil {
		req, ok := m.dequeue()
		if !ok {
			return
		}
		m.setSpeaking(true)
		m.log.Debug("mouth: speaking (priority=%d, waited=%s): %q", req.Priority, time.Since(req.QueuedAt).Round(time.Millisecond), req.Text)
		audio, err := m.synthesize(ctx, req.Text)
		if err != nil {
			m.log.Error("mouth: synthesis failed: %v", err)
		} else if err := m.player.Play(audio); err != nil {
			m.log.Error("mouth: playback failed: %v", err)
		}
		m.setSpeaking(false)
	}
}

func (m *Mouth) setSpeaking(v bool) {
	m.mu.Lock()
	m.speaking = v
	m.mu.Unlock()
}

// dequeue removes the highest priority item, oldest first among equals.
func (m *Mouth) dequeue() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return Request{}, false
	}
	best := 0
	for i, r := range m.queue {
		if r.Priority > m.queue[best].Priority {
			best = i
		}
	}
	req := m.queue[best]
	m.queue = append(m.queue[:best], m.queue[best+1:]...)
	return req, true
}

func (m *Mouth) synthesize(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := m.cache.Get(text); ok {
		return audio, nil
	}
	audio, err := m.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	m.cache.Put(text, audio)
	return audio, nil
}

// Prefetch synthesizes texts in the background so they play without a
// round trip when said, such as the cue for the next stage.
func (m *Mouth) Prefetch(ctx context.Context, texts ...string) {
	for _, text := range texts {
		if text == "" || m.cache.Has(text) {
			continue
		}
		m.wg.Add(1)
		go func(t string) {
			defer m.wg.Done()
			audio, err := m.tts.Synthesize(ctx, t)
			if err != nil {
				m.log.Error("prefetch: synthesis failed: %v", err)
				return
			}
			m.cache.Put(t, audio)
		}(text)
	}
}

// Cache returns the audio cache.
func (m *Mouth) Cache() *AudioCache { return m.cache }
