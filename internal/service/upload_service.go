package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
	"github.com/universal-yoga/yoga-admin-api/internal/remote"
)

// Failure details reported through the terminal callback.
const (
	msgInitFailed   = "Cloud store initialization failed. Please check your configuration."
	msgNoNetwork    = "No network connection"
	msgNoClasses    = "No classes to upload"
	msgKeyGenFailed = "Failed to generate key for a class. "
)

// ConnectivityProbe answers whether a network path is currently usable.
type ConnectivityProbe interface {
	Available() bool
}

// UploadCallback receives the single terminal result of an upload run.
// Exactly one of the two methods fires per invocation of the engine.
type UploadCallback interface {
	OnSuccess()
	OnFailure(detail string)
}

// CallbackFuncs adapts plain functions to UploadCallback.
type CallbackFuncs struct {
	Success func()
	Failure func(detail string)
}

func (c CallbackFuncs) OnSuccess() {
	if c.Success != nil {
		c.Success()
	}
}

func (c CallbackFuncs) OnFailure(detail string) {
	if c.Failure != nil {
		c.Failure(detail)
	}
}

// UploadService pushes local class records to the remote store in bulk.
// All record writes of one run are issued concurrently; their outcomes
// are folded into one aggregate result.
type UploadService struct {
	writer  remote.Writer
	probe   ConnectivityProbe
	metrics *MetricsService
	logger  *zap.Logger
}

// NewUploadService constructs an UploadService.
func NewUploadService(writer remote.Writer, probe ConnectivityProbe, metrics *MetricsService, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{writer: writer, probe: probe, metrics: metrics, logger: logger}
}

// uploadProgress is the shared mutable state of one run: counters, the
// concatenated failure detail, and the fired flag guarding the terminal
// callback. All access goes through completeOne under the mutex.
type uploadProgress struct {
	mu      sync.Mutex
	total   int
	success int
	failed  int
	details strings.Builder
	fired   bool
}

// completeOne folds one item outcome in. An empty detail counts as a
// success. It reports whether the caller completed the set and must
// fire the terminal callback, together with the final tallies. The
// fired flag guarantees at most one caller ever gets fire=true.
func (p *uploadProgress) completeOne(detail string) (fire bool, success, failed int, details string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if detail == "" {
		p.success++
	} else {
		p.failed++
		p.details.WriteString(detail)
	}

	if p.success+p.failed == p.total && !p.fired {
		p.fired = true
		return true, p.success, p.failed, p.details.String()
	}
	return false, 0, 0, ""
}

// Upload pushes every record to the remote store and reports one
// aggregate outcome through cb. Precondition failures fire the callback
// synchronously before any write is issued; otherwise the writes run
// concurrently and the callback fires on whichever completion closes
// the set.
func (s *UploadService) Upload(ctx context.Context, records []models.RemoteRecord, cb UploadCallback) {
	if !s.precheck(len(records), cb) {
		return
	}
	s.fanOut(ctx, records, cb)
}

// ClearAndUpload removes everything under the remote root, then
// proceeds as Upload with the same records and callback. The clear
// fully completes before any record write starts; if it fails, no
// writes are issued.
func (s *UploadService) ClearAndUpload(ctx context.Context, records []models.RemoteRecord, cb UploadCallback) {
	if !s.precheck(len(records), cb) {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("clear phase panicked", zap.Any("panic", r))
				s.observeRun("failure")
				cb.OnFailure(fmt.Sprintf("Failed to clear remote store: %v", r))
			}
		}()

		if err := s.writer.Clear(ctx); err != nil {
			s.logger.Error("failed to clear remote store", zap.Error(err))
			s.observeRun("failure")
			cb.OnFailure("Failed to clear remote store: " + err.Error())
			return
		}
		s.logger.Debug("remote store cleared, uploading records")
		s.fanOut(ctx, records, cb)
	}()
}

func (s *UploadService) precheck(total int, cb UploadCallback) bool {
	if s.writer == nil || !s.writer.Ready() {
		s.logger.Error("remote writer not initialized")
		s.observeRun("failure")
		cb.OnFailure(msgInitFailed)
		return false
	}
	if s.probe == nil || !s.probe.Available() {
		s.logger.Error("no network connection available")
		s.observeRun("failure")
		cb.OnFailure(msgNoNetwork)
		return false
	}
	if total == 0 {
		s.logger.Warn("no classes to upload")
		s.observeRun("failure")
		cb.OnFailure(msgNoClasses)
		return false
	}
	return true
}

func (s *UploadService) fanOut(ctx context.Context, records []models.RemoteRecord, cb UploadCallback) {
	progress := &uploadProgress{total: len(records)}
	s.logger.Debug("uploading class records", zap.Int("count", len(records)))

	for _, rec := range records {
		rec := rec
		go s.pushOne(ctx, rec, progress, cb)
	}
}

// pushOne performs a single record write and folds its outcome into the
// shared progress. A panic anywhere in the attempt is contained here and
// counted as that item's failure; sibling writes are never affected.
func (s *UploadService) pushOne(ctx context.Context, rec models.RemoteRecord, progress *uploadProgress, cb UploadCallback) {
	var detail string

	func() {
		defer func() {
			if r := recover(); r != nil {
				detail = fmt.Sprintf("Exception: %v; ", r)
			}
		}()

		var key string
		if rec.ID > 0 {
			key = strconv.FormatInt(rec.ID, 10)
		} else {
			generated, err := s.writer.GenerateKey(ctx)
			if err != nil || generated == "" {
				s.logger.Error("failed to generate remote key", zap.Error(err))
				detail = msgKeyGenFailed
				return
			}
			key = generated
		}

		if err := s.writer.Put(ctx, key, rec); err != nil {
			s.logger.Error("failed to upload class record", zap.String("key", key), zap.Error(err))
			detail = err.Error() + "; "
			return
		}
		s.logger.Debug("class record uploaded", zap.String("key", key))
	}()

	s.observeItem(detail == "")
	s.finish(progress, detail, cb)
}

// finish records one completion and, on the completion that closes the
// set, classifies the run and fires the terminal callback exactly once.
func (s *UploadService) finish(progress *uploadProgress, detail string, cb UploadCallback) {
	fire, success, failed, details := progress.completeOne(detail)
	if !fire {
		return
	}

	switch {
	case failed == 0:
		s.logger.Info("all uploads successful", zap.Int("count", success))
		s.observeRun("success")
		cb.OnSuccess()
	case success == 0:
		s.logger.Error("all uploads failed", zap.String("errors", details))
		s.observeRun("failure")
		cb.OnFailure("All uploads failed. Errors: " + details)
	default:
		s.logger.Error("some uploads failed",
			zap.Int("failed", failed),
			zap.Int("total", progress.total),
			zap.String("errors", details))
		s.observeRun("partial")
		cb.OnFailure(fmt.Sprintf("Some uploads failed (%d/%d). Errors: %s", failed, progress.total, details))
	}
}

func (s *UploadService) observeRun(result string) {
	if s.metrics != nil {
		s.metrics.ObserveUploadRun(result)
	}
}

func (s *UploadService) observeItem(ok bool) {
	if s.metrics != nil {
		s.metrics.ObserveUploadItem(ok)
	}
}
