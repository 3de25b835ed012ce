// Package history keeps the download ledger: a newest-first, capped list
// of terminal download outcomes persisted into a blob bucket after every
// mutation. Cancelled downloads are never recorded.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

const (
	// DefaultKey is the blob key the ledger is persisted under.
	DefaultKey = "download_history.json"

	// DefaultLimit caps the number of retained records. Appending past
	// the cap silently drops the oldest record.
	DefaultLimit = 1000

	// TimeLayout is the persisted record timestamp format.
	TimeLayout = "2006-01-02 15:04:05"
)

// Outcome is the terminal state of a recorded download.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Record is one ledger entry. LocalPath is empty for failures.
type Record struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	LocalPath string  `json:"local_path"`
	Name      string  `json:"name"`
	Outcome   Outcome `json:"outcome"`
	Timestamp string  `json:"timestamp"`
}

// Options configures a Ledger.
type Options struct {
	// Key is the blob key state persists under. Default: DefaultKey.
	Key string

	// Limit caps retained records. Default: DefaultLimit.
	Limit int

	// Logger receives persistence warnings. Default: zap.NewNop().
	Logger *zap.Logger

	// Now is the clock used to stamp records. Default: time.Now.
	Now func() time.Time
}

// Ledger is the capped, newest-first download history. Safe for
// concurrent use; every mutation persists the whole ledger.
type Ledger struct {
	mu      sync.RWMutex
	records []Record

	bucket *blob.Bucket
	key    string
	limit  int
	log    *zap.Logger
	now    func() time.Time
}

// New returns a ledger backed by bucket, loading any persisted records.
// Records persisted by older versions without an id are assigned one on
// load. A missing or unreadable document starts the ledger empty.
func New(ctx context.Context, bucket *blob.Bucket, opts Options) *Ledger {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	l := &Ledger{
		bucket: bucket,
		key:    opts.Key,
		limit:  opts.Limit,
		log:    opts.Logger,
		now:    opts.Now,
	}

	data, err := bucket.ReadAll(ctx, l.key)
	if err != nil {
		if gcerrors.Code(err) != gcerrors.NotFound {
			l.log.Warn("load download history", zap.Error(err))
		}
		return l
	}
	if err := json.Unmarshal(data, &l.records); err != nil {
		l.log.Warn("decode download history", zap.Error(err))
		l.records = nil
		return l
	}
	for i := range l.records {
		if l.records[i].ID == "" {
			l.records[i].ID = uuid.NewString()
		}
	}
	if len(l.records) > l.limit {
		l.records = l.records[:l.limit]
	}
	return l
}

// Append inserts rec at the front, dropping the oldest record past the
// cap, and persists. A missing ID or Timestamp is filled in. Returns the
// record as stored.
func (l *Ledger) Append(ctx context.Context, rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp == "" {
		rec.Timestamp = l.now().Format(TimeLayout)
	}

	l.mu.Lock()
	l.records = append([]Record{rec}, l.records...)
	if len(l.records) > l.limit {
		l.records = l.records[:l.limit]
	}
	l.mu.Unlock()

	l.persist(ctx)
	return rec
}

// Records returns a copy of the ledger, newest first.
func (l *Ledger) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Record(nil), l.records...)
}

// Get returns the record with the given id.
func (l *Ledger) Get(id string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, rec := range l.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// Delete removes the record with the given id and persists. Reports
// whether a record was removed.
func (l *Ledger) Delete(ctx context.Context, id string) bool {
	l.mu.Lock()
	found := false
	for i, rec := range l.records {
		if rec.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			found = true
			break
		}
	}
	l.mu.Unlock()

	if found {
		l.persist(ctx)
	}
	return found
}

// Clear drops all records and persists the empty ledger.
func (l *Ledger) Clear(ctx context.Context) {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()

	l.persist(ctx)
}

// Len returns the number of retained records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Ledger) persist(ctx context.Context) {
	l.mu.RLock()
	recs := l.records
	if recs == nil {
		recs = []Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	l.mu.RUnlock()
	if err == nil {
		err = l.bucket.WriteAll(ctx, l.key, data, nil)
	}
	if err != nil {
		l.log.Warn("persist download history", zap.Error(err))
	}
}
