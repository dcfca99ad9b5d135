package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
)

// ArchiveSchema creates the dataset history table. The ReplacingMergeTree
// keyed by (symbol, date) collapses the repeated appends of overlapping
// snapshot windows; built_at picks the newest version of a row.
var ArchiveSchema = []string{
	`CREATE TABLE IF NOT EXISTS dataset_rows (
		symbol        LowCardinality(String),
		date          Date,
		open          Nullable(Float64),
		high          Nullable(Float64),
		low           Nullable(Float64),
		close         Float64,
		volume        Float64,
		provisional   UInt8,
		indication    UInt8,
		vix_close     Nullable(Float64),
		vix_variation Nullable(Float64),
		vix_mean      Nullable(Float64),
		built_at      DateTime
	) ENGINE = ReplacingMergeTree(built_at)
	ORDER BY (symbol, date)`,
}

// ClickHouseArchive appends merged rows to the dataset history table.
type ClickHouseArchive struct {
	db *sql.DB
}

var _ drepo.DatasetArchive = (*ClickHouseArchive)(nil)

// NewClickHouseArchive creates an archive over an open ClickHouse handle.
func NewClickHouseArchive(db *sql.DB) *ClickHouseArchive {
	return &ClickHouseArchive{db: db}
}

// Append inserts rows in one batched transaction. Provisional rows are
// stored too; a later append of the closed day replaces them.
func (a *ClickHouseArchive) Append(ctx context.Context, symbol string, rows []models.MergedRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dataset_rows
		(symbol, date, open, high, low, close, volume, provisional, indication,
		 vix_close, vix_variation, vix_mean, built_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("archive prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range rows {
		var vixClose, vixVariation, vixMean *float64
		if r.Index != nil {
			vixClose = &r.Index.Close
			vixVariation = &r.Index.Variation
			vixMean = &r.Index.Mean
		}
		_, err := stmt.ExecContext(ctx,
			symbol,
			r.Date(),
			r.Asset.Open,
			r.Asset.High,
			r.Asset.Low,
			r.Asset.Close,
			r.Asset.Volume,
			boolToUint8(r.Asset.Provisional),
			uint8(r.Asset.Indication),
			vixClose,
			vixVariation,
			vixMean,
			now,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("archive insert %s: %w", r.Date().Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive commit: %w", err)
	}
	return nil
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
