package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/turtacn/hbond-profiler/internal/domain/statistics"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/database/postgres"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

type postgresProfileRunRepo struct {
	conn    *postgres.Connection
	log     logging.Logger
	metrics *prometheus.AppMetrics
}

// NewPostgresProfileRunRepo returns a ProfileRowRepository backed by the
// profile_runs and profile_rows tables.  metrics may be nil.
func NewPostgresProfileRunRepo(conn *postgres.Connection, log logging.Logger, metrics *prometheus.AppMetrics) statistics.ProfileRowRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresProfileRunRepo{conn: conn, log: log, metrics: metrics}
}

func (r *postgresProfileRunRepo) observe(op string, start time.Time, err error) {
	r.metrics.RecordDBQuery(op, time.Since(start), err)
}

func (r *postgresProfileRunRepo) SaveRun(ctx context.Context, run statistics.Run, rows []profile.ProfileRow) (err error) {
	start := time.Now()
	defer func() { r.observe("save_run", start, err) }()

	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profile_runs (id, frames, hits, distance_cutoff, angle_cutoff, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			run.ID, run.Frames, run.Hits, run.DistanceCutoff, run.AngleCutoff, run.CreatedAt,
		)
		if err != nil {
			return dbError(err, "failed to insert profile run")
		}

		for i, row := range rows {
			if err := insertRow(ctx, tx, run.ID, i, row); err != nil {
				return err
			}
		}
		r.log.Debug("profile run saved", logging.String("run_id", run.ID), logging.Int("rows", len(rows)))
		return nil
	})
}

func insertRow(ctx context.Context, exec execer, runID string, seq int, row profile.ProfileRow) error {
	var record interface{}
	if len(row.Record) > 0 {
		record = []byte(row.Record)
	}
	_, err := exec.ExecContext(ctx, `
		INSERT INTO profile_rows (
			run_id, seq, hit_idx, profile_id, interaction_class,
			distance, angle, donor_serial, acceptor_serial, record
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		runID, seq, row.HitIdx, row.ProfileID, row.InteractionClass,
		row.Distance, row.Angle, row.DonorSerial, row.AcceptorSerial, record,
	)
	if err != nil {
		return dbError(err, "failed to insert row %d of run %s", seq, runID)
	}
	return nil
}

func (r *postgresProfileRunRepo) GetRun(ctx context.Context, runID string) (run *statistics.Run, err error) {
	start := time.Now()
	defer func() { r.observe("get_run", start, err) }()

	row := r.conn.DB().QueryRowContext(ctx, `
		SELECT id, frames, hits, distance_cutoff, angle_cutoff, created_at
		FROM profile_runs WHERE id = $1`, runID)
	return scanRun(row)
}

func (r *postgresProfileRunRepo) FindRowsByRun(ctx context.Context, runID string) (out []profile.ProfileRow, err error) {
	start := time.Now()
	defer func() { r.observe("find_rows", start, err) }()

	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT run_id, hit_idx, profile_id, interaction_class, distance, angle,
		       donor_serial, acceptor_serial, record
		FROM profile_rows WHERE run_id = $1 ORDER BY seq`, runID)
	if err != nil {
		return nil, dbError(err, "failed to query profile rows")
	}
	defer rows.Close()

	out = []profile.ProfileRow{}
	for rows.Next() {
		row, err := scanProfileRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate profile rows")
	}
	return out, nil
}

func (r *postgresProfileRunRepo) DeleteRun(ctx context.Context, runID string) (err error) {
	start := time.Now()
	defer func() { r.observe("delete_run", start, err) }()

	res, err := r.conn.DB().ExecContext(ctx, `DELETE FROM profile_runs WHERE id = $1`, runID)
	if err != nil {
		return dbError(err, "failed to delete profile run")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError(err, "failed to delete profile run")
	}
	if n == 0 {
		return errors.NotFound("profile run not found").WithDetail(runID)
	}
	return nil
}

func scanRun(row rowScanner) (*statistics.Run, error) {
	run := &statistics.Run{}
	err := row.Scan(&run.ID, &run.Frames, &run.Hits, &run.DistanceCutoff, &run.AngleCutoff, &run.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NotFound("profile run not found")
		}
		return nil, dbError(err, "failed to scan profile run")
	}
	return run, nil
}

func scanProfileRow(row rowScanner) (profile.ProfileRow, error) {
	var (
		r      profile.ProfileRow
		record []byte
	)
	err := row.Scan(&r.RunID, &r.HitIdx, &r.ProfileID, &r.InteractionClass, &r.Distance, &r.Angle,
		&r.DonorSerial, &r.AcceptorSerial, &record)
	if err != nil {
		return r, dbError(err, "failed to scan profile row")
	}
	if len(record) > 0 {
		r.Record = json.RawMessage(record)
	}
	return r, nil
}

//Personal.AI order the ending
