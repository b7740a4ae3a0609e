package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
)

// fakeWriter is a controllable in-memory remote store.
type fakeWriter struct {
	mu          sync.Mutex
	ready       bool
	genKeys     []string
	genErr      error
	putErrs     map[string]error
	panicKeys   map[string]bool
	clearErr    error
	clearPanics bool
	gates       map[string]chan struct{}
	jitter      time.Duration

	puts   []string
	clears int
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{ready: true}
}

func (w *fakeWriter) Ready() bool { return w.ready }

func (w *fakeWriter) Put(ctx context.Context, key string, rec models.RemoteRecord) error {
	w.mu.Lock()
	gate := w.gates[key]
	jitter := w.jitter
	w.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if jitter > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(jitter))))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.panicKeys[key] {
		panic("writer exploded on " + key)
	}
	if err, ok := w.putErrs[key]; ok {
		return err
	}
	w.puts = append(w.puts, key)
	return nil
}

func (w *fakeWriter) GenerateKey(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.genErr != nil {
		return "", w.genErr
	}
	if len(w.genKeys) == 0 {
		return "", errors.New("no keys left")
	}
	key := w.genKeys[0]
	w.genKeys = w.genKeys[1:]
	return key, nil
}

func (w *fakeWriter) Clear(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.clearPanics {
		panic("clear exploded")
	}
	if w.clearErr != nil {
		return w.clearErr
	}
	w.clears++
	return nil
}

func (w *fakeWriter) putCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.puts)
}

func (w *fakeWriter) sortedPuts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]string(nil), w.puts...)
	sort.Strings(out)
	return out
}

// captureCallback counts terminal callback firings and records results.
type captureCallback struct {
	fires    int32
	failed   int32
	detail   string
	mu       sync.Mutex
	doneOnce sync.Once
	done     chan struct{}
}

func newCaptureCallback() *captureCallback {
	return &captureCallback{done: make(chan struct{})}
}

func (c *captureCallback) OnSuccess() {
	atomic.AddInt32(&c.fires, 1)
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *captureCallback) OnFailure(detail string) {
	atomic.AddInt32(&c.fires, 1)
	atomic.StoreInt32(&c.failed, 1)
	c.mu.Lock()
	c.detail = detail
	c.mu.Unlock()
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *captureCallback) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("terminal callback never fired")
	}
}

func (c *captureCallback) failureDetail() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail
}

type stubProbe struct{ up bool }

func (p stubProbe) Available() bool { return p.up }

func record(id int64) models.RemoteRecord {
	return models.RemoteRecord{ID: id, ClassType: "Flow Yoga", Instructor: "Jane Doe"}
}

func newTestService(w *fakeWriter, up bool) *UploadService {
	return NewUploadService(w, stubProbe{up: up}, nil, zap.NewNop())
}

func TestUploadEmptyRecords(t *testing.T) {
	writer := newFakeWriter()
	cb := newCaptureCallback()

	newTestService(writer, true).Upload(context.Background(), nil, cb)

	// Precondition failures are synchronous.
	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Equal(t, "No classes to upload", cb.failureDetail())
	assert.Zero(t, writer.putCount())
}

func TestUploadNoNetwork(t *testing.T) {
	writer := newFakeWriter()
	cb := newCaptureCallback()

	newTestService(writer, false).Upload(context.Background(), []models.RemoteRecord{record(1)}, cb)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Equal(t, "No network connection", cb.failureDetail())
	assert.Zero(t, writer.putCount())
}

func TestUploadWriterNotReady(t *testing.T) {
	writer := newFakeWriter()
	writer.ready = false
	cb := newCaptureCallback()

	newTestService(writer, true).Upload(context.Background(), []models.RemoteRecord{record(1)}, cb)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Contains(t, cb.failureDetail(), "initialization failed")
	assert.Zero(t, writer.putCount())
}

func TestUploadAllSucceedWithGeneratedKeys(t *testing.T) {
	writer := newFakeWriter()
	writer.genKeys = []string{"a", "b"}
	cb := newCaptureCallback()

	// Two records lack persisted identifiers and need generated keys.
	records := []models.RemoteRecord{record(0), record(5), record(0)}
	newTestService(writer, true).Upload(context.Background(), records, cb)
	cb.wait(t)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Equal(t, int32(0), atomic.LoadInt32(&cb.failed))
	assert.Empty(t, cb.failureDetail())
	assert.Equal(t, []string{"5", "a", "b"}, writer.sortedPuts())
}

func TestUploadNegativeIDGetsGeneratedKey(t *testing.T) {
	writer := newFakeWriter()
	writer.genKeys = []string{"gen-1"}
	cb := newCaptureCallback()

	newTestService(writer, true).Upload(context.Background(), []models.RemoteRecord{record(-3)}, cb)
	cb.wait(t)

	assert.Equal(t, []string{"gen-1"}, writer.sortedPuts())
}

func TestUploadMixedFailureMessage(t *testing.T) {
	writer := newFakeWriter()
	writer.putErrs = map[string]error{"1": errors.New("quota exceeded")}
	// Gate both writes so the failure completes first, deterministically.
	writer.gates = map[string]chan struct{}{
		"1": make(chan struct{}),
		"2": make(chan struct{}),
	}
	cb := newCaptureCallback()

	newTestService(writer, true).Upload(context.Background(), []models.RemoteRecord{record(1), record(2)}, cb)
	close(writer.gates["1"])
	time.Sleep(50 * time.Millisecond)
	close(writer.gates["2"])
	cb.wait(t)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Equal(t, "Some uploads failed (1/2). Errors: quota exceeded; ", cb.failureDetail())
}

func TestUploadAllFailMessage(t *testing.T) {
	writer := newFakeWriter()
	writer.putErrs = map[string]error{
		"1": errors.New("boom one"),
		"2": errors.New("boom two"),
	}
	cb := newCaptureCallback()

	newTestService(writer, true).Upload(context.Background(), []models.RemoteRecord{record(1), record(2)}, cb)
	cb.wait(t)

	detail := cb.failureDetail()
	assert.True(t, strings.HasPrefix(detail, "All uploads failed. Errors: "), detail)
	assert.Contains(t, detail, "boom one; ")
	assert.Contains(t, detail, "boom two; ")
}

func TestUploadFailureDetailsInCompletionOrder(t *testing.T) {
	writer := newFakeWriter()
	writer.putErrs = map[string]error{
		"1": errors.New("e1"),
		"2": errors.New("e2"),
		"3": errors.New("e3"),
	}
	writer.gates = map[string]chan struct{}{
		"1": make(chan struct{}),
		"2": make(chan struct{}),
		"3": make(chan struct{}),
	}
	cb := newCaptureCallback()

	records := []models.RemoteRecord{record(1), record(2), record(3)}
	newTestService(writer, true).Upload(context.Background(), records, cb)

	for _, key := range []string{"2", "3", "1"} {
		close(writer.gates[key])
		time.Sleep(50 * time.Millisecond)
	}
	cb.wait(t)

	assert.Equal(t, "All uploads failed. Errors: e2; e3; e1; ", cb.failureDetail())
}

func TestUploadKeyGenerationFailureSkipsWrite(t *testing.T) {
	writer := newFakeWriter()
	writer.genErr = errors.New("key service down")
	cb := newCaptureCallback()

	newTestService(writer, true).Upload(context.Background(), []models.RemoteRecord{record(0), record(7)}, cb)
	cb.wait(t)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Contains(t, cb.failureDetail(), "Failed to generate key for a class. ")
	assert.Contains(t, cb.failureDetail(), "Some uploads failed (1/2)")
	assert.Equal(t, []string{"7"}, writer.sortedPuts())
}

func TestUploadPanicIsContained(t *testing.T) {
	writer := newFakeWriter()
	writer.panicKeys = map[string]bool{"2": true}
	cb := newCaptureCallback()

	records := []models.RemoteRecord{record(1), record(2), record(3)}
	newTestService(writer, true).Upload(context.Background(), records, cb)
	cb.wait(t)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Contains(t, cb.failureDetail(), "Some uploads failed (1/3)")
	assert.Contains(t, cb.failureDetail(), "Exception: ")
	assert.Equal(t, []string{"1", "3"}, writer.sortedPuts())
}

func TestClearAndUploadClearsBeforeAnyWrite(t *testing.T) {
	writer := newFakeWriter()
	cb := newCaptureCallback()

	newTestService(writer, true).ClearAndUpload(context.Background(), []models.RemoteRecord{record(1), record(2)}, cb)
	cb.wait(t)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Equal(t, int32(0), atomic.LoadInt32(&cb.failed))
	writer.mu.Lock()
	clears := writer.clears
	writer.mu.Unlock()
	assert.Equal(t, 1, clears)
	assert.Equal(t, []string{"1", "2"}, writer.sortedPuts())
}

func TestClearAndUploadClearFailureIssuesNoWrites(t *testing.T) {
	writer := newFakeWriter()
	writer.clearErr = errors.New("permission denied")
	cb := newCaptureCallback()

	newTestService(writer, true).ClearAndUpload(context.Background(), []models.RemoteRecord{record(1)}, cb)
	cb.wait(t)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Equal(t, "Failed to clear remote store: permission denied", cb.failureDetail())
	assert.Zero(t, writer.putCount())
}

func TestClearAndUploadClearPanicIssuesNoWrites(t *testing.T) {
	writer := newFakeWriter()
	writer.clearPanics = true
	cb := newCaptureCallback()

	newTestService(writer, true).ClearAndUpload(context.Background(), []models.RemoteRecord{record(1)}, cb)
	cb.wait(t)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Equal(t, "Failed to clear remote store: clear exploded", cb.failureDetail())
	assert.Zero(t, writer.putCount())
}

func TestClearAndUploadEmptyRecordsFailsBeforeClear(t *testing.T) {
	writer := newFakeWriter()
	cb := newCaptureCallback()

	newTestService(writer, true).ClearAndUpload(context.Background(), nil, cb)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.fires))
	assert.Equal(t, "No classes to upload", cb.failureDetail())
	writer.mu.Lock()
	clears := writer.clears
	writer.mu.Unlock()
	assert.Zero(t, clears)
}

// The terminal callback must fire exactly once no matter how the N
// completions interleave, including mixed success/failure outcomes.
func TestUploadExactlyOnceUnderRandomInterleaving(t *testing.T) {
	const runs = 200
	const n = 8

	for i := 0; i < runs; i++ {
		writer := newFakeWriter()
		writer.jitter = 2 * time.Millisecond
		writer.putErrs = map[string]error{}
		failures := 0
		records := make([]models.RemoteRecord, 0, n)
		for id := int64(1); id <= n; id++ {
			records = append(records, record(id))
			if rand.Intn(2) == 0 {
				writer.putErrs[fmt.Sprintf("%d", id)] = fmt.Errorf("err-%d", id)
				failures++
			}
		}

		cb := newCaptureCallback()
		newTestService(writer, true).Upload(context.Background(), records, cb)
		cb.wait(t)

		// Give any stray duplicate fire a chance to land.
		time.Sleep(time.Millisecond)
		require.Equal(t, int32(1), atomic.LoadInt32(&cb.fires), "run %d", i)

		detail := cb.failureDetail()
		switch {
		case failures == 0:
			require.Empty(t, detail, "run %d", i)
		case failures == n:
			require.Contains(t, detail, "All uploads failed.", "run %d", i)
		default:
			require.Contains(t, detail, fmt.Sprintf("Some uploads failed (%d/%d)", failures, n), "run %d", i)
		}
	}
}
