package stream

import (
	"fmt"
	"time"

	"github.com/absoluteAquarian/monosound/internal/sample"
	"github.com/absoluteAquarian/monosound/internal/sink"
)

// modifyReadSecondsLocked is the subclass hook of §4.6: with no
// segmented-loop controller attached it is a no-op; with one
// attached, it delegates the clamp-at-segment-boundary decision to
// the tracker. Caller must hold p.mu.
func (p *Package) modifyReadSecondsLocked(secs *float64) bool {
	if p.loop == nil {
		return false
	}
	readTime := time.Duration(p.secondsRead * float64(time.Second))
	return p.loop.ModifyReadSeconds(readTime, secs)
}

// fillQueueLocked implements the §4.6 internal read loop. Caller must
// hold p.mu.
func (p *Package) fillQueueLocked(maxDepth int) {
	for len(p.readQueue)+p.snk.PendingBufferCount() < maxDepth {
		secs := p.bufferSeconds
		forceCheckLoop := p.modifyReadSecondsLocked(&secs)
		if secs <= 0 {
			p.handleLoopingLocked()
			break
		}

		raw, bytesRead, checkLoop, err := p.dec.ReadSamples(secs)
		if err != nil {
			// §7 DecoderFailure: treat the current read as
			// end-of-stream and let handleLooping decide.
			if p.onError != nil {
				p.onError(fmt.Errorf("stream %s: decoder read failed: %w", p.name, err))
			}
			p.handleLoopingLocked()
			break
		}

		frameSize := p.format.Channels * 2
		raw = raw[:len(raw)-len(raw)%frameSize]
		if len(raw) == 0 {
			p.handleLoopingLocked()
			break
		}

		processed := p.processFiltersLocked(raw)
		if p.preSubmitHook != nil {
			processed = p.preSubmitHook(processed)
		}
		p.readBytes += int64(bytesRead)
		p.secondsRead += float64(len(raw)) / float64(p.byteRate())
		p.readQueue = append(p.readQueue, processed)

		if checkLoop || forceCheckLoop {
			p.handleLoopingLocked()
		}
	}
}

// processFiltersLocked implements §4.6's processFilters: deinterleave
// to per-channel float64, run the chain in channel-major layout, clamp
// to [-1,1], tap the FFT query if attached, then re-interleave and
// re-quantize to 16-bit PCM. Caller must hold p.mu.
func (p *Package) processFiltersLocked(raw []byte) []byte {
	channels := p.format.Channels
	deinterleaved := sample.BytesToFloat64(raw, channels)
	channelSize := len(deinterleaved[0])

	flat := make([]float64, channels*channelSize)
	for c := range deinterleaved {
		copy(flat[c*channelSize:(c+1)*channelSize], deinterleaved[c])
	}

	now := time.Duration(p.secondsRead * float64(time.Second))
	onError := func(err error) {
		if p.onError != nil {
			p.onError(fmt.Errorf("stream %s: %w", p.name, err))
		}
	}
	applyFilterChainFlat(flat, channels, channelSize, p.format.SampleRate, now, p.filterChain, onError)

	if p.fftQuery != nil && channelSize >= p.fftQuerySize {
		tap := make([]float64, p.fftQuerySize)
		copy(tap, flat[:p.fftQuerySize]) // channel 0's prefix
		q := p.fftQuery
		go func() {
			q.Begin()
			_ = q.Populate(tap, time.Now())
			q.End()
		}()
	}

	out := make([][]float64, channels)
	for c := range out {
		out[c] = flat[c*channelSize : (c+1)*channelSize]
	}
	return sample.Float64ToBytes(out)
}

// handleLoopingLocked implements §4.6's handleLooping. Caller must
// hold p.mu.
func (p *Package) handleLoopingLocked() {
	forced := p.loop != nil && p.loop.ForceLooping()
	if !p.isLooping && !forced {
		p.finishedStreaming = true
		if p.onFinished != nil {
			p.onFinished()
		}
		return
	}

	var target float64
	if p.loop != nil {
		target = p.loop.LoopTargetTime().Seconds()
	} else {
		target = float64(p.sampleReadStart) / float64(p.byteRate())
	}
	_ = p.seekLocked(target)

	if p.onLooping != nil {
		p.onLooping()
	}
}

// onBufferNeeded is the sink's BufferNeeded handler (§4.6, §5): it
// tracks playTime off drained buffer duration, resolves any pending
// immediate jump, refills the read queue from the decoder, and submits
// the queued buffers to the sink.
func (p *Package) onBufferNeeded() {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentPending := p.snk.PendingBufferCount()
	drainedCount := p.previousPendingCount - currentPending
	if drainedCount < 0 {
		drainedCount = 0
	}

	var drained time.Duration
	for i := 0; i < drainedCount && len(p.submittedDurations) > 0; i++ {
		drained += p.submittedDurations[0]
		p.submittedDurations = p.submittedDurations[1:]
	}
	if p.snk.State() == sink.Playing {
		addPlayTime(&p.playTime, drained)
	}

	if p.pendingJumpSeconds != nil {
		if currentPending > 0 {
			p.previousPendingCount = currentPending
			return
		}
		storePlayTime(&p.playTime, time.Duration(*p.pendingJumpSeconds*float64(time.Second)))
		p.pendingJumpSeconds = nil
	}

	p.fillQueueLocked(p.queueTargetDepth)
	for len(p.readQueue) > 0 {
		buf := p.readQueue[0]
		p.readQueue = p.readQueue[1:]
		if err := p.snk.SubmitBuffer(buf); err != nil {
			if p.onError != nil {
				p.onError(err)
			}
			break
		}
		p.submittedDurations = append(p.submittedDurations, p.bufferDuration(buf))
	}

	p.previousPendingCount = p.snk.PendingBufferCount()
}
