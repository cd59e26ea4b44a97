package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/promocanvas/pkg/errors"
	"github.com/matzehuels/promocanvas/pkg/httputil"
)

// MaxIdentifiers is the number of identifiers a record can hold.
const MaxIdentifiers = 3

// DefaultAppendAttempts is used by [Ledger.AppendWithRetry] when attempts
// is not positive.
const DefaultAppendAttempts = 3

var (
	// ErrNotFound is returned by [Store.Read] when no ledger exists yet.
	ErrNotFound = perrors.New(perrors.ErrCodeLedgerNotFound, "ledger not found")

	// ErrConflict is returned when a write presents a stale version, or a
	// create finds an existing ledger.
	ErrConflict = perrors.New(perrors.ErrCodeLedgerConflict, "ledger changed since it was read")
)

// Record is one ledger row.
type Record struct {
	ID          int       `json:"id" bson:"id"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	Identifiers []string  `json:"identifiers" bson:"identifiers"`
	Feedback    string    `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

// Entry is the caller-supplied part of a new record.
type Entry struct {
	Identifiers []string
	Feedback    string
}

// Snapshot is the result of a read.
type Snapshot struct {
	Records []Record
	Version string
}

// Store persists a whole ledger.
type Store interface {
	// Read returns the current records and version, or ErrNotFound.
	Read(ctx context.Context) (*Snapshot, error)

	// Create writes the first version of the ledger. It returns ErrConflict
	// if a ledger already exists.
	Create(ctx context.Context, records []Record) (string, error)

	// Update replaces the ledger if its version still equals version. It
	// returns the new version, or ErrConflict.
	Update(ctx context.Context, records []Record, version string) (string, error)
}

// Ledger appends records to a [Store].
type Ledger struct {
	store  Store
	now    func() time.Time
	logger *log.Logger
	delay  time.Duration
}

// Option configures a [Ledger].
type Option func(*Ledger)

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithRetryDelay sets the wait between conflicting appends.
func WithRetryDelay(d time.Duration) Option {
	return func(l *Ledger) { l.delay = d }
}

// New creates a ledger over store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		now:    time.Now,
		logger: log.New(io.Discard),
		delay:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List returns all records. A missing ledger is empty.
func (l *Ledger) List(ctx context.Context) ([]Record, error) {
	snap, err := l.store.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// Append adds one record with the next sequential ID using a single
// read-modify-write. A concurrent writer makes it fail with ErrConflict.
func (l *Ledger) Append(ctx context.Context, e Entry) (Record, error) {
	ids, err := normalizeEntry(e)
	if err != nil {
		return Record{}, err
	}

	snap, err := l.store.Read(ctx)
	create := errors.Is(err, ErrNotFound)
	if err != nil && !create {
		return Record{}, fmt.Errorf("read ledger: %w", err)
	}

	var records []Record
	if !create {
		records = snap.Records
	}
	rec := Record{
		ID:          NextID(records),
		Timestamp:   l.now().UTC().Truncate(time.Second),
		Identifiers: ids,
		Feedback:    strings.TrimSpace(e.Feedback),
	}
	next := make([]Record, len(records), len(records)+1)
	copy(next, records)
	next = append(next, rec)

	var version string
	if create {
		version, err = l.store.Create(ctx, next)
	} else {
		version, err = l.store.Update(ctx, next, snap.Version)
	}
	if err != nil {
		return Record{}, err
	}

	l.logger.Debug("ledger record appended", "id", rec.ID, "identifiers", rec.Identifiers, "version", version)
	return rec, nil
}

// AppendWithRetry calls Append until it succeeds, fails with something other
// than ErrConflict, or attempts are exhausted.
func (l *Ledger) AppendWithRetry(ctx context.Context, e Entry, attempts int) (Record, error) {
	if attempts <= 0 {
		attempts = DefaultAppendAttempts
	}
	var rec Record
	err := httputil.Retry(ctx, httputil.FixedPolicy(attempts, l.delay), func(attempt int) error {
		var err error
		rec, err = l.Append(ctx, e)
		if errors.Is(err, ErrConflict) {
			l.logger.Debug("ledger conflict, re-reading", "attempt", attempt)
			return httputil.Retryable(err)
		}
		return err
	})
	return rec, err
}

// NextID returns the ID for a record appended after records.
func NextID(records []Record) int {
	if len(records) == 0 {
		return 1
	}
	return records[len(records)-1].ID + 1
}

func normalizeEntry(e Entry) ([]string, error) {
	ids := make([]string, 0, len(e.Identifiers))
	for _, id := range e.Identifiers {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) > MaxIdentifiers {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "a record holds at most %d identifiers, got %d", MaxIdentifiers, len(ids))
	}
	return ids, nil
}
