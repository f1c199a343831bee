package main

import (
	"fmt"
	"time"

	"screenrecall/pkg/capture"
	"screenrecall/pkg/governor"
)

// activitySignal and screenGrabber are the host-OS integration seam
// capture.Scheduler depends on (capture.ActivitySignal / capture.ScreenGrabber).
// Both interfaces are narrow by design so a real build swaps in a
// platform-specific backend (Windows idle-time API + GDI capture, X11
// XScreenSaver extension + XGetImage, etc.) without touching the scheduler.
// This build ships a conservative default: always-active (so capture never
// silently stops) and a grabber that reports unavailability, since no
// portable cross-platform screen-capture library is part of this module's
// dependency set.
type activitySignal struct{}

func (activitySignal) IdleSeconds() float64 { return 0 }
func (activitySignal) IsActive() bool       { return true }

type screenGrabber struct{}

func (screenGrabber) Grab(sourceID string) (*capture.Frame, error) {
	return nil, fmt.Errorf("no screen-capture backend configured for source %q; build with a platform backend", sourceID)
}

// resourceReader is the host-OS seam for governor.Sampler
// (governor.ResourceReader). No portable CPU/RAM sampling library is part of
// this module's dependency set, so this build reports a quiet baseline
// rather than a platform-specific reading; swap in a real backend (e.g.
// reading /proc/stat and /proc/meminfo on Linux) without touching Governor.
type resourceReader struct{}

func (resourceReader) ReadCPUPercent() (float64, error) { return 0, nil }
func (resourceReader) ReadRAMPercent() (float64, error) { return 0, nil }

var (
	_ capture.ActivitySignal  = activitySignal{}
	_ capture.ScreenGrabber   = screenGrabber{}
	_ governor.ResourceReader = resourceReader{}
)

// startupGracePeriod is not referenced by run, which waits a fixed 100ms
// after starting the query server before printing its address and does
// not probe the listener.
const startupGracePeriod = 5 * time.Second
