package archive

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cockroachdb/pebble"
	"github.com/go-bond/disks"
	"github.com/google/uuid"
)

const (
	// ARCHIVE_DATA_VERSION ..
	ARCHIVE_DATA_VERSION = 1

	// ARCHIVE_DATA_VERSION_KEY ..
	ARCHIVE_DATA_VERSION_KEY = "__disks_archive_version__"

	// ARCHIVE_FILTER_DIRTY_KEY is set while the archive is open and removed by
	// a clean Close. A saved filter is only trusted when it is absent.
	ARCHIVE_FILTER_DIRTY_KEY = "__disks_filter_dirty__"
)

var (
	ErrNotFound      = errors.New("report not found")
	ErrInvalidReport = errors.New("invalid report")
)

// Archive stores SortReports in pebble, grouped by algorithm and light
// count.
type Archive struct {
	db         *pebble.DB
	serializer disks.Serializer[any]
	filter     *BloomFilter
}

func Open(dirname string, opts *Options) (*Archive, error) {
	opts = opts.withDefaults()

	pdb, err := pebble.Open(dirname, opts.PebbleOptions)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		db:         pdb,
		serializer: opts.Serializer,
		filter:     NewBloomFilter(opts.FilterExpectedItems, opts.FilterFalsePositive, opts.FilterBuckets),
	}

	if err = a.initVersion(); err != nil {
		_ = pdb.Close()
		return nil, fmt.Errorf("failed to write archive version: %w", err)
	}

	if err = a.initFilter(context.Background()); err != nil {
		_ = pdb.Close()
		return nil, fmt.Errorf("filter initialization failed: %w", err)
	}

	if err = a.db.Set([]byte(ARCHIVE_FILTER_DIRTY_KEY), []byte{1}, pebble.Sync); err != nil {
		_ = pdb.Close()
		return nil, fmt.Errorf("failed to mark filter dirty: %w", err)
	}

	return a, nil
}

func (a *Archive) Close() error {
	if err := a.filter.Save(context.Background(), a.db); err != nil {
		_ = a.db.Close()
		return fmt.Errorf("failed to save filter: %w", err)
	}
	if err := a.db.Delete([]byte(ARCHIVE_FILTER_DIRTY_KEY), pebble.Sync); err != nil {
		_ = a.db.Close()
		return fmt.Errorf("failed to mark filter clean: %w", err)
	}
	return a.db.Close()
}

func (a *Archive) Version() int {
	value, closer, err := a.db.Get([]byte(ARCHIVE_DATA_VERSION_KEY))
	if err != nil {
		return 0
	}
	defer closer.Close()

	ver, _ := strconv.ParseInt(string(value), 10, 32)
	return int(ver)
}

func (a *Archive) initVersion() error {
	if a.Version() > 0 {
		return nil
	}
	ver := fmt.Sprintf("%d", ARCHIVE_DATA_VERSION)
	return a.db.Set([]byte(ARCHIVE_DATA_VERSION_KEY), []byte(ver), pebble.Sync)
}

func (a *Archive) filterDirty() bool {
	_, closer, err := a.db.Get([]byte(ARCHIVE_FILTER_DIRTY_KEY))
	if err != nil {
		return false
	}
	_ = closer.Close()
	return true
}

// initFilter loads the saved filter, or rebuilds it from the stored report
// keys when there is none, its sizing changed or the last Close was missed.
func (a *Archive) initFilter(ctx context.Context) error {
	if !a.filterDirty() {
		if err := a.filter.Load(ctx, a.db); err == nil {
			return nil
		}
	}

	if err := a.filter.Clear(ctx, a.db); err != nil {
		return err
	}

	prefix := reportKeyPrefix("", 0)
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keySuccessor(prefix),
	})
	if err != nil {
		return err
	}

	for iter.First(); iter.Valid(); iter.Next() {
		if _, err := DecodeReportKey(iter.Key()); err != nil {
			continue
		}
		a.filter.Add(ctx, iter.Key())
	}

	if err = iter.Close(); err != nil {
		return err
	}

	return a.filter.Save(ctx, a.db)
}

func (a *Archive) Put(ctx context.Context, report *disks.SortReport) error {
	if report == nil {
		return fmt.Errorf("%w: report can not be nil", ErrInvalidReport)
	}
	if report.ID == uuid.Nil {
		return fmt.Errorf("%w: report id can not be empty", ErrInvalidReport)
	}
	if report.Algorithm == "" {
		return fmt.Errorf("%w: algorithm can not be empty", ErrInvalidReport)
	}
	if report.LightCount <= 0 {
		return fmt.Errorf("%w: light count must be positive", ErrInvalidReport)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := a.serializer.Serialize(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	key := ReportKeyOf(report).Encode(nil)
	if err = a.db.Set(key, data, pebble.Sync); err != nil {
		return err
	}

	a.filter.Add(ctx, key)
	return nil
}

func (a *Archive) Get(ctx context.Context, algorithm disks.Algorithm, lightCount int, id uuid.UUID) (*disks.SortReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := ReportKey{Algorithm: algorithm, LightCount: lightCount, ID: id}.Encode(nil)
	if !a.filter.MayContain(ctx, key) {
		return nil, ErrNotFound
	}

	data, closer, err := a.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return a.decode(data)
}

func (a *Archive) Delete(ctx context.Context, algorithm disks.Algorithm, lightCount int, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := ReportKey{Algorithm: algorithm, LightCount: lightCount, ID: id}.Encode(nil)
	return a.db.Delete(key, pebble.Sync)
}

// List returns reports of algorithm in key order, i.e. by light count. An
// empty algorithm lists every algorithm and a lightCount of 0 every light
// count. A limit of 0 returns every matching report.
func (a *Archive) List(ctx context.Context, algorithm disks.Algorithm, lightCount int, limit int) ([]*disks.SortReport, error) {
	prefix := reportKeyPrefix(algorithm, lightCount)
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keySuccessor(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	reports := make([]*disks.SortReport, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		if algorithm == "" && lightCount > 0 {
			key, err := DecodeReportKey(iter.Key())
			if err != nil || key.LightCount != lightCount {
				continue
			}
		}

		report, err := a.decode(iter.Value())
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)

		if limit > 0 && len(reports) >= limit {
			break
		}
	}

	return reports, iter.Error()
}

func (a *Archive) decode(data []byte) (*disks.SortReport, error) {
	report := &disks.SortReport{}
	if err := a.serializer.Deserialize(data, report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return report, nil
}
