// Package tracker runs the scheduled tracking cycle: walk every tracked
// order, observe its current price and availability through the matching
// retailer adapter, and append the result to the order's history.
package tracker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"variant-tracker/adapters"
	"variant-tracker/internal/store"
	"variant-tracker/internal/types"
)

// CycleReport summarises one tracking cycle for tests and operational
// visibility.
type CycleReport struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []string  `json:"failed"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
}

// Job is the tracking batch process. It owns only its dependencies; the
// cadence comes from an external scheduler calling RunOnce.
type Job struct {
	registry *adapters.Registry
	store    store.OrderStore
	config   *types.Config
	logger   types.Logger
	metrics  *Metrics

	// clock is swappable for deterministic tests.
	clock func() time.Time

	running atomic.Bool
}

// NewJob creates a tracking job over the given registry and store.
func NewJob(registry *adapters.Registry, orderStore store.OrderStore, config *types.Config, logger types.Logger) *Job {
	return &Job{
		registry: registry,
		store:    orderStore,
		config:   config,
		logger:   logger,
		metrics:  NewMetrics(),
		clock:    time.Now,
	}
}

// Metrics exposes the job's Prometheus registry.
func (j *Job) Metrics() *Metrics {
	return j.metrics
}

// RunOnce executes one full tracking cycle. Orders are processed
// independently across a bounded worker pool; a failure in one order is
// logged and skipped, never fatal to the batch. A call that overlaps a
// still-running cycle returns ErrCycleInProgress immediately.
func (j *Job) RunOnce(ctx context.Context) (*CycleReport, error) {
	if !j.running.CompareAndSwap(false, true) {
		return nil, types.ErrCycleInProgress
	}
	defer j.running.Store(false)

	orders, err := j.store.ListTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked orders: %w", err)
	}

	report := &CycleReport{Started: j.clock()}
	j.metrics.IncCycles()

	workers := j.config.MaxConcurrentOrders
	if workers <= 0 {
		workers = 1
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, workers)
	)
	for i := range orders {
		order := orders[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			err := j.trackOrder(ctx, &order)

			mu.Lock()
			if err != nil {
				report.Failed = append(report.Failed, order.ID)
			} else {
				report.Succeeded = append(report.Succeeded, order.ID)
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(report.Succeeded)
	sort.Strings(report.Failed)
	report.Finished = j.clock()

	j.logger.Infof("tracking cycle done: %d succeeded, %d failed, took %v",
		len(report.Succeeded), len(report.Failed), report.Finished.Sub(report.Started))
	return report, nil
}

// trackOrder runs the full sequence for one order: resolve adapter, fetch
// and resolve the variant, append the observation, persist. Any failure,
// including a panicking adapter, is contained here so one bad order never
// takes down the cycle. Nothing partial is persisted for a failed order.
func (j *Job) trackOrder(ctx context.Context, order *types.TrackedOrder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("track order %s: panic: %v", order.ID, r)
			j.logger.Errorf("order %s retailer %s: recovered panic during tracking: %v",
				order.ID, order.RetailerID, r)
			j.metrics.IncOrders("panic")
		}
	}()

	adapter, err := j.registry.Resolve(order.RetailerID)
	if err != nil {
		// Missing adapter registration is a deployment defect, not
		// flakiness. Log it louder than a fetch failure.
		j.logger.Errorf("order %s: %v — check adapter registration", order.ID, err)
		j.metrics.IncOrders("adapter_not_found")
		return err
	}

	start := j.clock()
	obs, err := adapters.Observe(ctx, adapter, *order, j.clock)
	j.metrics.ObserveFetchDuration(j.clock().Sub(start))
	if err != nil {
		j.logger.Warnf("order %s retailer %s: fetch failed, skipping this cycle: %v",
			order.ID, order.RetailerID, err)
		j.metrics.IncOrders("fetch_failed")
		return err
	}

	order.AppendObservation(obs)

	if err := j.store.Save(ctx, order); err != nil {
		j.logger.Errorf("order %s retailer %s: persist failed: %v",
			order.ID, order.RetailerID, err)
		j.metrics.IncOrders("save_failed")
		return err
	}

	j.metrics.IncObservations(string(obs.Reason))
	j.metrics.IncOrders("succeeded")
	return nil
}
