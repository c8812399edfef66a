// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"eqlab/internal/log"
)

// DefaultInterval paces frames at roughly 30 per second.
const DefaultInterval = 33 * time.Millisecond

// FrameSource is a sequence of magnitude frames, such as a spectrogram.
type FrameSource interface {
	NumFrames() int
	Frame(i int) []float64
}

// Publisher sends one frame of its source per tick until the source is
// exhausted or Stop is called. Each Publisher runs at most once.
type Publisher struct {
	sender   *Sender
	source   FrameSource
	interval time.Duration

	doneChan chan struct{} // closed by Stop
	finished chan struct{} // closed when the publishing goroutine exits
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex
	started  bool

	sequence uint32
	next     int
	sent     int

	f32Buffer    []float32
	packetBuffer *bytes.Buffer
}

func NewPublisher(interval time.Duration, sender *Sender, source FrameSource) (*Publisher, error) {
	if sender == nil {
		return nil, errors.New("udp: publisher needs a sender")
	}
	if source == nil {
		return nil, errors.New("udp: publisher needs a frame source")
	}
	if interval <= 0 {
		log.Warnf("UDPPublisher: invalid interval %s, defaulting to %s", interval, DefaultInterval)
		interval = DefaultInterval
	}

	log.Infof("UDPPublisher: %d frames at %s intervals", source.NumFrames(), interval)
	return &Publisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		doneChan:     make(chan struct{}),
		finished:     make(chan struct{}),
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start launches the publishing goroutine. Further calls are no-ops.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		log.Warnf("UDPPublisher: Start called but already started")
		return
	}
	p.started = true
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(p.finished)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for p.next < p.source.NumFrames() {
			select {
			case <-ticker.C:
				p.publishNext()
			case <-p.doneChan:
				log.Debugf("UDPPublisher: stopped after %d frames", p.next)
				return
			}
		}
		log.Infof("UDPPublisher: all %d frames published", p.next)
	}()
}

// Done is closed once the publisher has sent every frame or been stopped.
func (p *Publisher) Done() <-chan struct{} {
	return p.finished
}

// Sent reports how many packets were delivered to the socket. Read it after
// Done is closed.
func (p *Publisher) Sent() int {
	return p.sent
}

// Stop signals the publishing goroutine and waits for it to exit.
func (p *Publisher) Stop() error {
	p.stopOnce.Do(func() { close(p.doneChan) })

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		p.wg.Wait()
	}
	return nil
}

// Close stops the publisher. The sender is left open for its owner.
func (p *Publisher) Close() error {
	return p.Stop()
}

func (p *Publisher) publishNext() {
	frame := p.source.Frame(p.next)
	p.next++

	if cap(p.f32Buffer) < len(frame) {
		p.f32Buffer = make([]float32, len(frame))
	}
	p.f32Buffer = p.f32Buffer[:len(frame)]
	for i, v := range frame {
		p.f32Buffer[i] = float32(v)
	}

	p.sequence++
	packet := Packet{
		Sequence:  p.sequence,
		Timestamp: time.Now().UnixNano(),
		Values:    p.f32Buffer,
	}
	if err := AppendPacket(p.packetBuffer, packet); err != nil {
		log.Errorf("UDPPublisher: error packing frame %d: %v", p.next-1, err)
		return
	}

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		return
	}
	p.sent++
	log.Debugf("UDPPublisher: sent packet %d (%d bytes)", p.sequence, p.packetBuffer.Len())
}
