// Package export serializes an owner's full record set into a portable
// compressed archive.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"example.com/healthshare/internal/domain"
	"example.com/healthshare/internal/observability"
)

// PageSize is the fixed record-store page size used while draining an
// owner's data, bounding memory per fetch.
const PageSize = 50

// Manifest describes the archive contents, including which types failed so
// a partial archive is never silently incomplete.
type Manifest struct {
	OwnerID     string        `json:"owner_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Types       []TypeSummary `json:"types"`
}

// TypeSummary is one record type's export outcome.
type TypeSummary struct {
	Type   domain.RecordType `json:"type"`
	Count  int               `json:"count"`
	Failed bool              `json:"failed,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// Archive is the assembled zip plus its manifest.
type Archive struct {
	Filename string
	Manifest Manifest
	Data     []byte
}

// PartialExport is returned alongside the archive when some types failed
// mid-pagination after others already succeeded.
type PartialExport struct {
	Failed []domain.RecordType
}

func (e *PartialExport) Error() string {
	return fmt.Sprintf("export completed with %d failed types", len(e.Failed))
}

// Option configures optional exporter behaviour.
type Option func(*Exporter)

// WithLogger overrides the logger used to report failed types.
func WithLogger(logger *log.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for manifest and file naming.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// Exporter drains the record store per type and bundles the results.
type Exporter struct {
	records domain.RecordStore
	logger  *log.Logger
	now     func() time.Time
}

// NewExporter constructs an Exporter over the record store.
func NewExporter(records domain.RecordStore, opts ...Option) *Exporter {
	e := &Exporter{
		records: records,
		logger:  log.New(log.Writer(), "[export] ", log.LstdFlags),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// recordDocument is the per-type JSON document written into the archive.
type recordDocument struct {
	Type    domain.RecordType `json:"type"`
	Records []recordEntry     `json:"records"`
}

type recordEntry struct {
	ID        string    `json:"id"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportAll fetches every record of every known type for the owner and
// bundles one JSON document per type into a single zip archive. Types whose
// pagination fails are listed in the manifest and reported through a
// *PartialExport; data already fetched for other types is still delivered.
func (e *Exporter) ExportAll(ctx context.Context, ownerID string) (*Archive, error) {
	generatedAt := e.now().UTC()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest := Manifest{
		OwnerID:     ownerID,
		GeneratedAt: generatedAt,
		Types:       make([]TypeSummary, 0, len(domain.AllRecordTypes)),
	}
	var failed []domain.RecordType

	for _, t := range domain.AllRecordTypes {
		records, err := e.drainType(ctx, ownerID, t)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Printf("export failed for type %s: %v", t, err)
			recordTypeFailed(string(t))
			manifest.Types = append(manifest.Types, TypeSummary{Type: t, Failed: true, Error: err.Error()})
			failed = append(failed, t)
			continue
		}

		doc := recordDocument{Type: t, Records: make([]recordEntry, 0, len(records))}
		for _, rec := range records {
			doc.Records = append(doc.Records, recordEntry{ID: rec.ID, Value: rec.Value, Timestamp: rec.Timestamp})
		}
		if err := writeJSONEntry(zw, string(t)+".json", doc); err != nil {
			return nil, err
		}
		manifest.Types = append(manifest.Types, TypeSummary{Type: t, Count: len(records)})
		recordTypeExported(string(t), len(records))
	}

	if err := writeJSONEntry(zw, "manifest.json", manifest); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	archive := &Archive{
		Filename: fmt.Sprintf("healthdata_%s_%s.zip", ownerID, generatedAt.Format("20060102T150405Z")),
		Manifest: manifest,
		Data:     buf.Bytes(),
	}
	observability.RecordArchiveBuilt(generatedAt)

	if len(failed) > 0 {
		return archive, &PartialExport{Failed: failed}
	}
	return archive, nil
}

func (e *Exporter) drainType(ctx context.Context, ownerID string, t domain.RecordType) ([]domain.HealthRecord, error) {
	var (
		out    []domain.HealthRecord
		cursor *domain.Cursor
	)
	for {
		page, next, err := e.records.QueryRecords(ctx, ownerID, t, nil, cursor, PageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if next == nil {
			return out, nil
		}
		cursor = next
	}
}

func writeJSONEntry(zw *zip.Writer, name string, payload interface{}) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
