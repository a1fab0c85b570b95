// Package profiling provides the application service that profiles hydrogen
// bonds across frames and aggregates them into per-hit statistics.  It is the
// single entry point used by the CLI and HTTP handlers.
package profiling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/domain/frame"
	"github.com/turtacn/hbond-profiler/internal/domain/interaction"
	"github.com/turtacn/hbond-profiler/internal/domain/statistics"
	"github.com/turtacn/hbond-profiler/internal/domain/structure"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// Export object names under <prefix>/<run id>/.
const (
	SerialPairsObject  = "serial_pairs.csv"
	ProfileTableObject = "profile.csv"
)

// Service defines the profiling application operations.
type Service interface {
	ProfileFrames(ctx context.Context, frames []*frame.Frame) (*Profile, error)
	Statistics(ctx context.Context, runID string, rows []profile.ProfileRow) ([]statistics.HitStats, error)
	RunStatistics(ctx context.Context, runID string) ([]statistics.HitStats, error)
	CheckPair(ctx context.Context, f *frame.Frame, donor, acceptor profile.FeatureRef) (*profile.CheckResponse, error)
	ListExports(ctx context.Context, runID string, presign bool) (*profile.ExportListResponse, error)
	DeleteRun(ctx context.Context, runID string) (*profile.DeleteRunResponse, error)
}

// Config holds the profiling parameters.
type Config struct {
	Params          interaction.HydrogenBondParams
	MemberPairs     [][2]int
	Concurrency     int
	SerialDelimiter string
	ExportPrefix    string
	StatsCacheTTL   time.Duration
}

// ConfigFrom maps the application configuration onto Config.
func ConfigFrom(cfg *config.Config) Config {
	hb := cfg.Interaction.HydrogenBond
	pairs := make([][2]int, 0, len(cfg.Profiling.MemberPairs))
	for _, p := range cfg.Profiling.MemberPairs {
		if len(p) == 2 {
			pairs = append(pairs, [2]int{p[0], p[1]})
		}
	}
	return Config{
		Params: interaction.HydrogenBondParams{
			DistanceCutoff:      hb.DistanceCutoff,
			AngleCutoff:         hb.AngleCutoff,
			FeatureKeys:         [2]string{hb.DonorKey, hb.AcceptorKey},
			DonorClassifiers:    hb.DonorClassifiers,
			AcceptorClassifiers: hb.AcceptorClassifiers,
			Commutative:         hb.Commutative,
		},
		MemberPairs:     pairs,
		Concurrency:     cfg.Profiling.Concurrency,
		SerialDelimiter: cfg.Profiling.SerialDelimiter,
		ExportPrefix:    cfg.Profiling.ExportPrefix,
		StatsCacheTTL:   cfg.Profiling.StatsCacheTTL,
	}
}

// Profile is the result of one profiling run.  Rows and Hits are parallel.
type Profile struct {
	RunID      string
	Frames     int
	Rows       []profile.ProfileRow
	Hits       []*interaction.HydrogenBond
	ExportKeys []string
}

// Response converts the run into its API body.
func (p *Profile) Response() *profile.ProfileResponse {
	rows := p.Rows
	if rows == nil {
		rows = []profile.ProfileRow{}
	}
	return &profile.ProfileResponse{
		RunID:      p.RunID,
		Frames:     p.Frames,
		Hits:       len(p.Rows),
		Rows:       rows,
		ExportKeys: p.ExportKeys,
	}
}

// Option configures the service.
type Option func(*serviceImpl)

func WithRepository(repo statistics.ProfileRowRepository) Option {
	return func(s *serviceImpl) { s.repo = repo }
}

func WithPublisher(p HitPublisher) Option {
	return func(s *serviceImpl) { s.publisher = p }
}

func WithExportStore(store ExportStore) Option {
	return func(s *serviceImpl) { s.exports = store }
}

func WithStatsCache(cache StatsCache) Option {
	return func(s *serviceImpl) { s.cache = cache }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(s *serviceImpl) { s.logger = l }
}

type serviceImpl struct {
	cfg  Config
	rule *interaction.HydrogenBondType

	repo      statistics.ProfileRowRepository
	publisher HitPublisher
	exports   ExportStore
	cache     StatsCache
	metrics   *prometheus.AppMetrics
	logger    logging.Logger

	newID func() string
	now   func() time.Time
}

// NewService validates cfg and creates the service.  Sinks left unset are
// skipped.
func NewService(cfg Config, opts ...Option) (Service, error) {
	rule, err := interaction.NewHydrogenBondType(interaction.HydrogenBondName, cfg.Params)
	if err != nil {
		return nil, err
	}
	if len(cfg.MemberPairs) == 0 {
		cfg.MemberPairs = [][2]int{{0, 1}}
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.SerialDelimiter == "" {
		cfg.SerialDelimiter = interaction.DefaultSerialDelimiter
	}
	s := &serviceImpl{
		cfg:     cfg,
		rule:    rule,
		metrics: prometheus.NewNoopAppMetrics(),
		logger:  logging.NewNopLogger(),
		newID:   func() string { return uuid.NewString() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *serviceImpl) ProfileFrames(ctx context.Context, frames []*frame.Frame) (prof *Profile, err error) {
	if len(frames) == 0 {
		return nil, errors.InvalidParam("at least one frame is required")
	}
	runID := s.newID()
	log := s.logger.With(logging.String("run_id", runID))
	start := s.now()
	defer func() { s.metrics.RecordRun(err) }()

	results := make([][]*interaction.HydrogenBond, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, f := range frames {
		i, f := i, f
		g.Go(func() error {
			hits, err := s.scanFrame(gctx, f)
			if err != nil {
				return errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("failed to profile frame %d (%q)", i, f.ProfileID))
			}
			results[i] = hits
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		log.Error("profiling run failed", logging.Err(err))
		return nil, err
	}

	prof, err = s.assemble(runID, frames, results)
	if err != nil {
		return nil, err
	}
	if err = s.persist(ctx, prof); err != nil {
		return nil, err
	}
	if err = s.publish(ctx, prof, frames); err != nil {
		return nil, err
	}
	if err = s.export(ctx, prof); err != nil {
		return nil, err
	}

	log.Info("profiling run complete",
		logging.Int("frames", len(frames)),
		logging.Int("hits", len(prof.Rows)),
		logging.Duration("elapsed", time.Since(start)))
	return prof, nil
}

func (s *serviceImpl) scanFrame(ctx context.Context, f *frame.Frame) (hits []*interaction.HydrogenBond, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordFrame(time.Since(start), err) }()

	for _, pair := range s.cfg.MemberPairs {
		members, err := f.Select(pair)
		if err != nil {
			return nil, err
		}
		scanStart := time.Now()
		res, err := s.rule.FindHits(ctx, members, interaction.ScanOptions{MemberIdxs: []int{pair[0], pair[1]}})
		if err != nil {
			return nil, err
		}
		st := res.Stats
		s.metrics.RecordScan(s.rule.InteractionName(), st.Hits, st.RejectedDistance, st.RejectedAngle, time.Since(scanStart))
		for _, hb := range res.Hits {
			s.metrics.RecordHit(hb.Class().Name())
		}
		s.logger.Debug("member pair scanned",
			logging.String("profile_id", f.ProfileID),
			logging.Ints("member_pair", []int{pair[0], pair[1]}),
			logging.Int("evaluated", st.Evaluated),
			logging.Int("hits", st.Hits))
		hits = append(hits, res.Hits...)
	}
	return hits, nil
}

// assemble numbers hits across frames.  A hit keeps the hit_idx of the first
// frame in which its class and donor/acceptor atoms appeared.
func (s *serviceImpl) assemble(runID string, frames []*frame.Frame, results [][]*interaction.HydrogenBond) (*Profile, error) {
	prof := &Profile{RunID: runID, Frames: len(frames)}
	index := make(map[string]int)
	for i, f := range frames {
		for _, hb := range results[i] {
			key := hitKey(hb)
			idx, ok := index[key]
			if !ok {
				idx = len(index)
				index[key] = idx
			}
			rec, err := hb.Record()
			if err != nil {
				return nil, err
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode hit record")
			}
			prof.Rows = append(prof.Rows, profile.ProfileRow{
				RunID:            runID,
				HitIdx:           idx,
				ProfileID:        profileID(f, i),
				InteractionClass: hb.Class().Name(),
				Distance:         hb.Distance(),
				Angle:            hb.Angle(),
				DonorSerial:      serialOf(hb.Donor()),
				AcceptorSerial:   serialOf(hb.Acceptor()),
				Record:           data,
			})
			prof.Hits = append(prof.Hits, hb)
		}
	}
	return prof, nil
}

func hitKey(hb *interaction.HydrogenBond) string {
	c := hb.Class()
	return fmt.Sprintf("%s|%v|%v|%v", c.Name(), c.MemberPair(),
		hb.Donor().Type().AtomIdxs(), hb.Acceptor().Type().AtomIdxs())
}

func profileID(f *frame.Frame, i int) string {
	if f.ProfileID != "" {
		return f.ProfileID
	}
	return strconv.Itoa(i)
}

func serialOf(f structure.Feature) int {
	a := structure.PrimaryAtom(f)
	if a == nil {
		return 0
	}
	v, _ := a.Attribute(structure.AttrPDBSerialNumber)
	n, _ := v.(int)
	return n
}

func (s *serviceImpl) persist(ctx context.Context, prof *Profile) error {
	if s.repo == nil {
		return nil
	}
	run := statistics.Run{
		ID:             prof.RunID,
		Frames:         prof.Frames,
		Hits:           len(prof.Rows),
		DistanceCutoff: s.cfg.Params.DistanceCutoff,
		AngleCutoff:    s.cfg.Params.AngleCutoff,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.SaveRun(ctx, run, prof.Rows); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to persist profile rows")
	}
	return nil
}

func (s *serviceImpl) publish(ctx context.Context, prof *Profile, frames []*frame.Frame) error {
	if s.publisher == nil {
		return nil
	}
	byFrame := make(map[string][]profile.ProfileRow)
	for _, r := range prof.Rows {
		byFrame[r.ProfileID] = append(byFrame[r.ProfileID], r)
	}
	now := s.now().UTC()
	events := make([]profile.HitEvent, 0, len(frames))
	for i, f := range frames {
		id := profileID(f, i)
		events = append(events, profile.HitEvent{
			EventID:    s.newID(),
			RunID:      prof.RunID,
			ProfileID:  id,
			Rows:       byFrame[id],
			OccurredAt: now,
		})
	}
	err := s.publisher.PublishHits(ctx, events)
	s.metrics.RecordPublish("hits", len(events), err)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePublishFailed, "failed to publish hit events")
	}
	return nil
}

func (s *serviceImpl) export(ctx context.Context, prof *Profile) error {
	if s.exports == nil {
		return nil
	}
	var serials bytes.Buffer
	if err := interaction.WriteSerialPairs(&serials, prof.Hits, s.cfg.SerialDelimiter); err != nil {
		s.metrics.RecordExport("serial_pairs", err)
		return err
	}
	var table bytes.Buffer
	if err := statistics.WriteRows(&table, prof.Rows); err != nil {
		s.metrics.RecordExport("profile_table", err)
		return err
	}

	objects := []struct {
		kind, name string
		data       []byte
	}{
		{"serial_pairs", SerialPairsObject, serials.Bytes()},
		{"profile_table", ProfileTableObject, table.Bytes()},
	}
	for _, o := range objects {
		key := path.Join(s.exportPrefix(prof.RunID), o.name)
		err := s.exports.PutExport(ctx, key, o.data, "text/csv")
		s.metrics.RecordExport(o.kind, err)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to upload "+key)
		}
		prof.ExportKeys = append(prof.ExportKeys, key)
	}
	return nil
}

func statsCacheKey(runID string) string { return "stats:" + runID }

func (s *serviceImpl) exportPrefix(runID string) string {
	return path.Join(s.cfg.ExportPrefix, runID)
}

// Statistics aggregates rows as given.  It never reads or fills the stats
// cache; only RunStatistics does.
func (s *serviceImpl) Statistics(_ context.Context, _ string, rows []profile.ProfileRow) ([]statistics.HitStats, error) {
	stats := statistics.Aggregate(statistics.FromProfileRows(rows))
	s.metrics.RecordStatisticsGroups(len(stats))
	return stats, nil
}

// RunStatistics aggregates the stored rows of runID, through the stats cache
// when one is configured.
func (s *serviceImpl) RunStatistics(ctx context.Context, runID string) ([]statistics.HitStats, error) {
	if s.repo == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "profile row storage is not configured")
	}
	load := func(ctx context.Context) ([]statistics.HitStats, error) {
		rows, err := s.repo.FindRowsByRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			if _, err := s.repo.GetRun(ctx, runID); err != nil {
				return nil, err
			}
		}
		return statistics.Aggregate(statistics.FromProfileRows(rows)), nil
	}

	var (
		stats   []statistics.HitStats
		loadErr error
	)
	if s.cache == nil || runID == "" {
		stats, loadErr = load(ctx)
	} else {
		err := s.cache.GetOrSet(ctx, statsCacheKey(runID), &stats, s.cfg.StatsCacheTTL,
			func(ctx context.Context) (interface{}, error) {
				v, err := load(ctx)
				loadErr = err
				return v, err
			})
		if err != nil && loadErr == nil {
			s.logger.Warn("statistics cache unavailable, computing directly",
				logging.String("run_id", runID), logging.Err(err))
			stats, loadErr = load(ctx)
		}
	}
	if loadErr != nil {
		return nil, loadErr
	}
	s.metrics.RecordStatisticsGroups(len(stats))
	return stats, nil
}

func (s *serviceImpl) ListExports(ctx context.Context, runID string, presign bool) (*profile.ExportListResponse, error) {
	if runID == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	if s.exports == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "export storage is not configured")
	}
	objects, err := s.exports.ListExports(ctx, s.exportPrefix(runID), presign)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, errors.NotFound("no exports for run").WithDetail(runID)
	}
	return &profile.ExportListResponse{RunID: runID, Exports: objects}, nil
}

// DeleteRun removes the stored rows, exports and cached statistics of a run.
// It fails with not found only when no store held anything for runID.
func (s *serviceImpl) DeleteRun(ctx context.Context, runID string) (*profile.DeleteRunResponse, error) {
	if runID == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	if s.repo == nil && s.exports == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "neither row nor export storage is configured")
	}
	resp := &profile.DeleteRunResponse{RunID: runID}

	if s.repo != nil {
		err := s.repo.DeleteRun(ctx, runID)
		switch {
		case err == nil:
			resp.RowsDeleted = true
		case !errors.IsCode(err, errors.ErrCodeNotFound):
			return nil, err
		}
	}
	if s.exports != nil {
		n, err := s.exports.DeleteExports(ctx, s.exportPrefix(runID))
		resp.ExportsDeleted = n
		if err != nil {
			return nil, err
		}
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, statsCacheKey(runID)); err != nil {
			s.logger.Warn("failed to evict cached statistics",
				logging.String("run_id", runID), logging.Err(err))
		}
	}

	if !resp.RowsDeleted && resp.ExportsDeleted == 0 {
		return nil, errors.NotFound("profile run not found").WithDetail(runID)
	}
	s.logger.Info("profiling run deleted",
		logging.String("run_id", runID),
		logging.Bool("rows_deleted", resp.RowsDeleted),
		logging.Int("exports_deleted", resp.ExportsDeleted))
	return resp, nil
}

func (s *serviceImpl) CheckPair(ctx context.Context, f *frame.Frame, donorRef, acceptorRef profile.FeatureRef) (*profile.CheckResponse, error) {
	donor, err := f.Feature(donorRef)
	if err != nil {
		return nil, err
	}
	acceptor, err := f.Feature(acceptorRef)
	if err != nil {
		return nil, err
	}

	class, err := interaction.NewHydrogenBondType(
		fmt.Sprintf("%s_%s_%s", s.rule.Name(), donor.Type().Name(), acceptor.Type().Name()),
		s.cfg.Params,
		interaction.WithFeatureTypes(donor.Type(), acceptor.Type()),
		interaction.WithMemberPair(donorRef.Member, acceptorRef.Member),
	)
	if err != nil {
		return nil, err
	}

	res, err := class.Check(donor, acceptor)
	if err != nil {
		return nil, err
	}
	outcome := prometheus.OutcomeHit
	switch {
	case !res.OK && res.Stage == interaction.StageDistance:
		outcome = prometheus.OutcomeRejectedDistance
	case !res.OK:
		outcome = prometheus.OutcomeRejectedAngle
	}
	s.metrics.RecordCheck(class.InteractionName(), outcome)

	resp := &profile.CheckResponse{
		OK:             res.OK,
		Stage:          res.Stage.String(),
		Distance:       res.Distance,
		RejectedAngles: res.RejectedAngles,
	}
	if !res.OK {
		return resp, nil
	}

	hb, err := interaction.NewHydrogenBond(class, donor, acceptor)
	if err != nil {
		return nil, err
	}
	rec, err := hb.Record()
	if err != nil {
		return nil, err
	}
	if resp.Record, err = json.Marshal(rec); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode hit record")
	}
	angle := hb.Angle()
	resp.Angle = &angle
	return resp, nil
}

//Personal.AI order the ending
