package pipeline

import (
	"context"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"lorestream/internal/announce"
	"lorestream/internal/audiofeed"
	"lorestream/internal/config"
	"lorestream/internal/dataset"
	"lorestream/internal/encoder"
	"lorestream/internal/era"
	"lorestream/internal/journal"
	"lorestream/internal/logging"
	"lorestream/internal/music"
	"lorestream/internal/render"
	"lorestream/internal/resume"
	"lorestream/internal/sequence"
	"lorestream/internal/services"
	"lorestream/internal/textutil"
)

// Driver stages.
const (
	stageInit      = "init"
	stageStreaming = "streaming"
	stageDraining  = "draining"
)

// audioQueueDepth bounds how many slide cues may sit ahead of playback.
const audioQueueDepth = 8

// Result is the terminal outcome of one run.
type Result struct {
	Status    string // journal status constant
	NextIndex int
	Frames    int64
	Err       error
}

// ExitCode maps the run outcome to the process exit code contract: 0 done,
// 1 failed (supervisor restarts), 2 interrupted (supervisor must not).
func (r Result) ExitCode() int {
	switch r.Status {
	case journal.StatusDone:
		return 0
	case journal.StatusInterrupted:
		return 2
	default:
		return 1
	}
}

// Driver runs the slide-to-stream pipeline.
type Driver struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *journal.Store // nil when the journal is unavailable
	announcer announce.Service
	sessionID string
}

// New assembles a driver. store may be nil; announcer must not be (use the
// noop service).
func New(cfg *config.Config, store *journal.Store, announcer announce.Service, sessionID string, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		store:     store,
		announcer: announcer,
		sessionID: sessionID,
	}
}

// Run executes the full stream lifecycle and blocks until it reaches a
// terminal state. A canceled context is an operator interrupt, not a
// failure.
func (d *Driver) Run(ctx context.Context) Result {
	ctx = services.WithSessionID(ctx, d.sessionID)
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("run starting", logging.String(logging.FieldStage, stageInit))

	records, err := dataset.Load(d.cfg.Paths.DatasetFile)
	if err != nil {
		return d.finish(Result{Status: journal.StatusFailed, Err: err}, logger)
	}

	table, err := era.LoadDurations(d.cfg.Paths.DurationFile)
	if err != nil {
		return d.finish(Result{Status: journal.StatusFailed, Err: err}, logger)
	}
	policy := era.Policy{
		Table:             table,
		DefaultSeconds:    d.cfg.Stream.SlideDuration,
		SpecialMinSeconds: d.cfg.Stream.SpecialMinDuration,
	}

	musicIdx, err := music.NewIndex(d.cfg.Paths.MusicDir, d.cfg.Paths.DefaultMusic, logger)
	if err != nil {
		return d.finish(Result{Status: journal.StatusFailed, Err: err}, logger)
	}
	if musicIdx.Len() == 0 {
		logger.Warn("no era tracks indexed, every era plays the fallback track",
			logging.String("fallback", musicIdx.Fallback()))
	}

	fonts := render.LoadFonts(d.cfg.Paths, logger)
	compositor := render.NewCompositor(d.cfg, fonts, logger)
	rotation := render.NewRotation(d.cfg, logger)

	ledger := resume.NewLedger(d.cfg.ResumeFile(), logger)
	start := ledger.Read()
	if start >= len(records) {
		logger.Info("resume point past end of dataset, restarting from the first slide",
			logging.Int("resume_index", start), logging.Int("records", len(records)))
		start = 0
	}
	if start > 0 {
		logger.Info("resuming mid-dataset", logging.Int("resume_index", start))
	}
	d.journalStart(ctx, start, logger)

	if err := audiofeed.EnsureFifo(d.cfg.Audio.FifoPath); err != nil {
		return d.finish(Result{Status: journal.StatusFailed, NextIndex: start, Err: err}, logger)
	}
	defer func() {
		if err := audiofeed.RemoveFifo(d.cfg.Audio.FifoPath); err != nil {
			logger.Warn("audio pipe cleanup failed", logging.Error(err))
		}
	}()

	fifo, err := audiofeed.OpenFifoWriter(d.cfg.Audio.FifoPath)
	if err != nil {
		return d.finish(Result{Status: journal.StatusFailed, NextIndex: start, Err: err}, logger)
	}

	enc, err := encoder.Start(d.cfg, logger)
	if err != nil {
		fifo.Close()
		return d.finish(Result{Status: journal.StatusFailed, NextIndex: start, Err: err}, logger)
	}

	feeder := audiofeed.NewFeeder(fifo, d.cfg.Encoder.Binary,
		d.cfg.Audio.SampleRate, d.cfg.Audio.Channels, audioQueueDepth, logger)
	feederCtx, stopFeeder := context.WithCancel(context.Background())
	defer stopFeeder()
	go feeder.Run(feederCtx)

	seq := sequence.NewSequencer(enc.VideoInput(), d.cfg.Stream.Width, d.cfg.Stream.Height, logger)
	timing := sequence.Timing{FPS: d.cfg.Stream.FPS, Crossfade: d.cfg.Stream.CrossfadeDuration}

	logger.Info("streaming", logging.String(logging.FieldStage, stageStreaming),
		logging.Int("records", len(records)), logging.Int("start_index", start))

	result := d.stream(ctx, streamDeps{
		records:    records,
		policy:     policy,
		music:      musicIdx,
		compositor: compositor,
		rotation:   rotation,
		ledger:     ledger,
		feeder:     feeder,
		sequencer:  seq,
		timing:     timing,
		start:      start,
		logger:     logger,
	})
	result.Frames = seq.FramesWritten()

	logger.Info("draining", logging.String(logging.FieldStage, stageDraining))
	if result.Status == journal.StatusDone {
		if err := feeder.Close(); err != nil && result.Err == nil {
			result.Status = journal.StatusFailed
			result.Err = err
		}
		if err := enc.CloseInput(); err != nil && result.Err == nil {
			result.Status = journal.StatusFailed
			result.Err = err
		}
		if err := enc.Wait(); err != nil && result.Err == nil {
			result.Status = journal.StatusFailed
			result.Err = err
		}
	} else {
		stopFeeder()
		enc.Kill()
		_ = enc.Wait()
	}

	d.journalMisses(ctx, musicIdx, logger)
	if result.Status == journal.StatusDone {
		if err := ledger.Clear(); err != nil {
			logger.Warn("resume ledger clear failed", logging.Error(err))
		}
	}
	return d.finish(result, logger)
}

type streamDeps struct {
	records    []dataset.Record
	policy     era.Policy
	music      *music.Index
	compositor *render.Compositor
	rotation   *render.Rotation
	ledger     *resume.Ledger
	feeder     *audiofeed.Feeder
	sequencer  *sequence.Sequencer
	timing     sequence.Timing
	start      int
	logger     *slog.Logger
}

// stream plays the intro card, the slide loop, and the outro card. Crossfade
// frames are charged to the outgoing slide; the intro hard-cuts into the
// first slide.
func (d *Driver) stream(ctx context.Context, deps streamDeps) Result {
	records := deps.records
	cardFrames := sequence.FrameCount(d.cfg.Stream.CardDuration, d.cfg.Stream.FPS)
	cardDuration := deps.timing.FrameDuration(cardFrames)

	renderAt := func(idx int) image.Image {
		overlay := deps.rotation.Advance(idx + 1)
		if overlay != nil {
			deps.logger.Debug("overlay active",
				logging.Int(logging.FieldSlideIndex, idx),
				logging.String("asset", filepath.Base(deps.rotation.Current())))
		}
		return deps.compositor.RenderSlide(records[idx], overlay)
	}

	introPlayed := false
	if d.cfg.Stream.IntroEnabled && cardFrames > 0 {
		intro := deps.compositor.RenderCard(d.cfg.Stream.IntroTitle, d.cfg.Stream.IntroSubtitle)
		cue := audiofeed.Cue{
			Track:    deps.music.Resolve(records[deps.start].Era),
			Era:      records[deps.start].Era,
			Duration: cardDuration,
			FadeIn:   true,
		}
		if err := deps.feeder.Enqueue(ctx, cue); err != nil {
			return d.abort(ctx, deps, err)
		}
		if err := deps.sequencer.WriteHold(ctx, intro, cardFrames); err != nil {
			return d.abort(ctx, deps, err)
		}
		introPlayed = true
	}

	var outro image.Image
	if d.cfg.Stream.OutroEnabled && cardFrames > 0 {
		outro = deps.compositor.RenderCard(d.cfg.Stream.OutroTitle, "")
	}

	current := renderAt(deps.start)
	for i := deps.start; i < len(records); i++ {
		if err := ctx.Err(); err != nil {
			return d.abort(ctx, deps, err)
		}
		record := records[i]
		duration := deps.policy.DurationFor(record)
		track := deps.music.Resolve(record.Era)

		blendsOut := i+1 < len(records) || outro != nil
		hold, blend := deps.timing.Counts(duration.Seconds(), blendsOut)
		// The cue carries the screen time of the frames actually emitted,
		// not the scheduled seconds, so the audio budget cannot drift from
		// the video when a duration is not a whole number of frames.
		emitted := deps.timing.FrameDuration(hold + blend)

		cue := audiofeed.Cue{
			Track:    track,
			Era:      record.Era,
			Duration: emitted,
			FadeIn:   d.eraChanges(records, i, -1) && !(i == deps.start && introPlayed),
			FadeOut:  d.eraChanges(records, i, +1),
		}
		if err := deps.feeder.Enqueue(ctx, cue); err != nil {
			return d.abort(ctx, deps, err)
		}

		slideCtx := services.WithSlideIndex(ctx, i)
		d.journalSlide(slideCtx, i, record, emitted, deps.logger)
		d.announcer.AnnounceSlide(slideCtx, announce.Announcement{
			Year:     record.Year,
			Label:    record.Label,
			Era:      record.Era,
			Special:  record.IsSpecial,
			Snapshot: current,
		})

		if err := deps.sequencer.WriteHold(ctx, current, hold); err != nil {
			return d.abort(ctx, deps, err)
		}
		if blend > 0 {
			next := outro
			if i+1 < len(records) {
				next = renderAt(i + 1)
			}
			if err := deps.sequencer.WriteBlend(ctx, current, next, blend); err != nil {
				return d.abort(ctx, deps, err)
			}
			current = next
		} else if i+1 < len(records) {
			current = renderAt(i + 1)
		}

		if err := deps.ledger.Commit(i + 1); err != nil {
			deps.logger.Warn("resume commit failed", logging.Int(logging.FieldSlideIndex, i), logging.Error(err))
		}
		if err := deps.feeder.Err(); err != nil {
			return d.abort(ctx, deps, err)
		}
	}

	if outro != nil {
		cue := audiofeed.Cue{
			Track:    deps.music.Resolve(records[len(records)-1].Era),
			Era:      records[len(records)-1].Era,
			Duration: cardDuration,
			FadeOut:  true,
		}
		if err := deps.feeder.Enqueue(ctx, cue); err != nil {
			return d.abort(ctx, deps, err)
		}
		if err := deps.sequencer.WriteHold(ctx, outro, cardFrames); err != nil {
			return d.abort(ctx, deps, err)
		}
	}

	return Result{Status: journal.StatusDone, NextIndex: len(records)}
}

// eraChanges reports whether the slide at index i sits on an era boundary in
// the given direction. The run's first and last slides count as boundaries.
func (d *Driver) eraChanges(records []dataset.Record, i, direction int) bool {
	j := i + direction
	if j < 0 || j >= len(records) {
		return true
	}
	return textutil.NormalizeKey(records[i].Era) != textutil.NormalizeKey(records[j].Era)
}

func (d *Driver) abort(ctx context.Context, deps streamDeps, err error) Result {
	status := journal.StatusFailed
	if ctx.Err() != nil && !services.Fatal(err) {
		status = journal.StatusInterrupted
		err = ctx.Err()
	}
	// Next index is whatever the ledger last committed plus the resume
	// read; Read reflects the durable value.
	return Result{Status: status, NextIndex: deps.ledger.Read(), Err: err}
}

func (d *Driver) finish(result Result, logger *slog.Logger) Result {
	if d.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.store.FinishSession(ctx, d.sessionID, result.Status, result.NextIndex, result.Frames); err != nil {
			logger.Warn("journal finish failed", logging.Error(err))
		}
		cancel()
	}
	if result.Err != nil {
		logger.Error("run finished", logging.String("status", result.Status),
			logging.Int("next_index", result.NextIndex),
			logging.Int64("frames", result.Frames), logging.Error(result.Err))
	} else {
		logger.Info("run finished", logging.String("status", result.Status),
			logging.Int("next_index", result.NextIndex),
			logging.Int64("frames", result.Frames))
	}
	return result
}

func (d *Driver) journalStart(ctx context.Context, startIndex int, logger *slog.Logger) {
	if d.store == nil {
		return
	}
	if err := d.store.StartSession(ctx, d.sessionID, d.cfg.Stream.Destination, startIndex); err != nil {
		logger.Warn("journal start failed", logging.Error(err))
	}
}

func (d *Driver) journalSlide(ctx context.Context, index int, record dataset.Record, duration time.Duration, logger *slog.Logger) {
	if d.store == nil {
		return
	}
	if err := d.store.RecordSlide(ctx, d.sessionID, index, record, duration); err != nil {
		logger.Warn("journal slide failed", logging.Int(logging.FieldSlideIndex, index), logging.Error(err))
	}
}

func (d *Driver) journalMisses(ctx context.Context, idx *music.Index, logger *slog.Logger) {
	if d.store == nil {
		return
	}
	for _, label := range idx.Misses() {
		if err := d.store.RecordMusicMiss(ctx, d.sessionID, label); err != nil {
			logger.Warn("journal music miss failed", logging.Error(err))
			return
		}
	}
}
