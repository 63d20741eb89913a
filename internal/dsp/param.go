package dsp

import "math"

// minExpValue keeps exponential ramps away from zero, where they are undefined.
const minExpValue = 1e-4

type automationKind int

const (
	autoSet automationKind = iota
	autoLinear
	autoExponential
	autoTarget
)

type automation struct {
	kind      automationKind
	time      float64 // seconds on the graph clock
	value     float64
	timeConst float64 // only for autoTarget
}

// Param is a sample-clock automated value. Automation events are interpreted
// lazily by ValueAt, so envelopes are described once as (time, target) points
// and never stepped by wall-clock polling.
//
// Param is not safe for concurrent use; the owning graph serializes access.
type Param struct {
	initial float64
	events  []automation
}

// NewParam returns a Param holding value until automation says otherwise.
func NewParam(value float64) *Param {
	return &Param{initial: value}
}

// SetValueAtTime jumps to value at t.
func (p *Param) SetValueAtTime(value, t float64) {
	p.insert(automation{kind: autoSet, time: t, value: value})
}

// LinearRampToValueAtTime ramps linearly from the previous event to value, ending at t.
func (p *Param) LinearRampToValueAtTime(value, t float64) {
	p.insert(automation{kind: autoLinear, time: t, value: value})
}

// ExponentialRampToValueAtTime ramps exponentially from the previous event to
// value, ending at t. Values at or below zero are raised to a small positive floor.
func (p *Param) ExponentialRampToValueAtTime(value, t float64) {
	if value < minExpValue {
		value = minExpValue
	}
	p.insert(automation{kind: autoExponential, time: t, value: value})
}

// SetTargetAtTime starts an exponential approach toward target at t with the
// given time constant in seconds.
func (p *Param) SetTargetAtTime(target, t, timeConst float64) {
	if timeConst <= 0 {
		p.SetValueAtTime(target, t)
		return
	}
	p.insert(automation{kind: autoTarget, time: t, value: target, timeConst: timeConst})
}

// CancelScheduledValues drops every event at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	for i, ev := range p.events {
		if ev.time >= t {
			p.events = p.events[:i]
			return
		}
	}
}

// CancelAndHoldAtTime freezes the curve at its value at t and discards all
// other automation. Past events are collapsed so the event list stays short.
func (p *Param) CancelAndHoldAtTime(t float64) {
	v := p.ValueAt(t)
	p.initial = v
	p.events = p.events[:0]
	p.events = append(p.events, automation{kind: autoSet, time: t, value: v})
}

// ValueAt evaluates the automation curve at t.
func (p *Param) ValueAt(t float64) float64 {
	v := p.initial
	start := math.Inf(-1)
	var target *automation
	for i := range p.events {
		ev := &p.events[i]
		cur := v
		if target != nil {
			cur = approach(v, target, math.Min(t, ev.time))
		}
		switch ev.kind {
		case autoLinear, autoExponential:
			if ev.time > t {
				if math.IsInf(start, -1) || t < start {
					return cur
				}
				return interpolate(ev.kind, v, start, ev.value, ev.time, t)
			}
			v, start, target = ev.value, ev.time, nil
		case autoSet:
			if ev.time > t {
				return cur
			}
			v, start, target = ev.value, ev.time, nil
		case autoTarget:
			if ev.time > t {
				return cur
			}
			v, start, target = cur, ev.time, ev
		}
	}
	if target != nil {
		return approach(v, target, t)
	}
	return v
}

// Value returns the value the curve settles on once all automation has run.
func (p *Param) Value() float64 {
	if len(p.events) == 0 {
		return p.initial
	}
	return p.events[len(p.events)-1].value
}

func (p *Param) insert(ev automation) {
	i := len(p.events)
	for i > 0 && p.events[i-1].time > ev.time {
		i--
	}
	p.events = append(p.events, automation{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

func approach(from float64, target *automation, t float64) float64 {
	if t <= target.time {
		return from
	}
	return target.value + (from-target.value)*math.Exp(-(t-target.time)/target.timeConst)
}

func interpolate(kind automationKind, v0, t0, v1, t1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	frac := (t - t0) / (t1 - t0)
	if kind == autoExponential && v0 > 0 && v1 > 0 {
		return v0 * math.Pow(v1/v0, frac)
	}
	return v0 + (v1-v0)*frac
}
