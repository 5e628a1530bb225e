package usecase

import "time"

// PipelineObserver receives pipeline counters. The Prometheus set in
// observability/metrics satisfies it; tests and the summary commands use
// the nop implementation.
type PipelineObserver interface {
	ObserveDocument(outcome string, duration time.Duration)
	ObserveFallback(reason string)
	ObserveStored(created bool)
	ObserveSkipped(reason string)
	ObserveDownload(result string)
	ObserveUnrecognizedPeriods(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveDocument(string, time.Duration) {}
func (nopObserver) ObserveFallback(string)                {}
func (nopObserver) ObserveStored(bool)                    {}
func (nopObserver) ObserveSkipped(string)                 {}
func (nopObserver) ObserveDownload(string)                {}
func (nopObserver) ObserveUnrecognizedPeriods(int)        {}
