package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tycoon/internal/game"
	"tycoon/internal/journal"
)

var (
	ErrNoGame      = errors.New("no game in progress, run `tycoon new` first")
	ErrCorruptSave = errors.New("save file could not be restored")
)

const saveFile = "save.json"

// Backend is one way of playing: against a local engine or a tycoon-api
// server. Commands return the engine's Result; rejections come back as
// errors.
type Backend interface {
	NewGame(ctx context.Context, opts game.Options) (game.View, error)
	View(ctx context.Context) (game.View, error)
	PendingEvent(ctx context.Context) (*game.Event, error)
	EndTurn(ctx context.Context) (game.TurnSummary, error)
	Choose(ctx context.Context, eventID string, choice int) (game.Result, error)
	AllocateMarketing(ctx context.Context, channel string, amount float64) (game.Result, error)
	Hire(ctx context.Context, role string) (game.Result, error)
	Fire(ctx context.Context, employeeID string) (game.Result, error)
	DevelopFeature(ctx context.Context, spec game.FeatureSpec) (game.Result, error)
	RaiseFunding(ctx context.Context, round string) (game.Result, error)
	Journal() *journal.Journal
}

func SavePath(dir string) string {
	return filepath.Join(dir, saveFile)
}

// Local runs the engine in process and keeps its snapshot in dir.
type Local struct {
	dir     string
	log     *slog.Logger
	engine  *game.Engine
	journal *journal.Journal
}

// OpenLocal restores the saved game in dir if there is one. obs receives
// every emission after the journal does.
func OpenLocal(dir string, logger *slog.Logger, balance *game.Balance, obs game.Observer) (*Local, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	j, err := journal.Open(journal.Path(dir))
	if err != nil {
		return nil, err
	}
	observers := game.Observers{j}
	if obs != nil {
		observers = append(observers, obs)
	}
	l := &Local{
		dir:     dir,
		log:     logger,
		journal: j,
		engine: game.NewEngine(game.EngineOptions{
			Logger:   logger,
			Observer: observers,
			Balance:  balance,
		}),
	}

	raw, err := os.ReadFile(SavePath(dir))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return l, nil
	case err != nil:
		return nil, err
	}
	if !l.engine.Restore(raw) {
		return nil, fmt.Errorf("%w: %s", ErrCorruptSave, SavePath(dir))
	}
	return l, nil
}

func (l *Local) Journal() *journal.Journal { return l.journal }

func (l *Local) ready() error {
	if l.engine.Turn() == 0 {
		return ErrNoGame
	}
	return nil
}

func (l *Local) persist() error {
	raw, err := l.engine.Snapshot()
	if err != nil {
		return err
	}
	if err := os.WriteFile(SavePath(l.dir), raw, 0o600); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if err := l.journal.Err(); err != nil {
		l.log.Warn("journal not written", "err", err)
	}
	return nil
}

func (l *Local) run(fn func() (game.Result, error)) (game.Result, error) {
	if err := l.ready(); err != nil {
		return game.Result{}, err
	}
	res, err := fn()
	if err != nil {
		return res, err
	}
	return res, l.persist()
}

func (l *Local) NewGame(_ context.Context, opts game.Options) (game.View, error) {
	if err := l.journal.Reset(); err != nil {
		return game.View{}, err
	}
	if err := l.engine.NewGame(opts); err != nil {
		return game.View{}, err
	}
	return l.engine.View(), l.persist()
}

func (l *Local) View(context.Context) (game.View, error) {
	if err := l.ready(); err != nil {
		return game.View{}, err
	}
	return l.engine.View(), nil
}

func (l *Local) PendingEvent(context.Context) (*game.Event, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	ev, ok := l.engine.PendingEvent()
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func (l *Local) EndTurn(context.Context) (game.TurnSummary, error) {
	if err := l.ready(); err != nil {
		return game.TurnSummary{}, err
	}
	summary, err := l.engine.EndTurn()
	if err != nil {
		return summary, err
	}
	return summary, l.persist()
}

func (l *Local) Choose(_ context.Context, eventID string, choice int) (game.Result, error) {
	return l.run(func() (game.Result, error) { return l.engine.HandleEventChoice(eventID, choice) })
}

func (l *Local) AllocateMarketing(_ context.Context, channel string, amount float64) (game.Result, error) {
	return l.run(func() (game.Result, error) { return l.engine.AllocateMarketingBudget(channel, amount) })
}

func (l *Local) Hire(_ context.Context, role string) (game.Result, error) {
	return l.run(func() (game.Result, error) { return l.engine.HireEmployee(role) })
}

func (l *Local) Fire(_ context.Context, employeeID string) (game.Result, error) {
	return l.run(func() (game.Result, error) { return l.engine.FireEmployee(employeeID) })
}

func (l *Local) DevelopFeature(_ context.Context, spec game.FeatureSpec) (game.Result, error) {
	return l.run(func() (game.Result, error) { return l.engine.DevelopFeature(spec) })
}

func (l *Local) RaiseFunding(_ context.Context, round string) (game.Result, error) {
	return l.run(func() (game.Result, error) { return l.engine.RaiseFunding(round) })
}

// Remote plays a game hosted by tycoon-api. The server's responses are
// replayed to the local observers so both modes print the same way.
type Remote struct {
	dir     string
	client  *Client
	session Session
	obs     game.Observer
	journal *journal.Journal
}

func OpenRemote(dir, baseURL string, obs game.Observer) (*Remote, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	j, err := journal.Open(journal.Path(dir))
	if err != nil {
		return nil, err
	}
	observers := game.Observers{j}
	if obs != nil {
		observers = append(observers, obs)
	}
	r := &Remote{dir: dir, client: NewClient(baseURL), obs: observers, journal: j}
	if s, err := LoadSession(dir); err == nil && s.APIBaseURL == r.client.BaseURL {
		r.session = s
	}
	return r, nil
}

func (r *Remote) Journal() *journal.Journal { return r.journal }

func (r *Remote) gameID() (string, error) {
	if r.session.GameID == "" {
		return "", ErrNoGame
	}
	return r.session.GameID, nil
}

func (r *Remote) NewGame(ctx context.Context, opts game.Options) (game.View, error) {
	created, err := r.client.NewGame(ctx, opts)
	if err != nil {
		return game.View{}, err
	}
	r.session = Session{APIBaseURL: r.client.BaseURL, GameID: created.GameID}
	if err := SaveSession(r.dir, r.session); err != nil {
		return created.View, err
	}
	if err := r.journal.Reset(); err != nil {
		return created.View, err
	}
	for _, n := range created.View.State.Notifications {
		r.obs.Notification(n)
	}
	return created.View, nil
}

func (r *Remote) View(ctx context.Context) (game.View, error) {
	id, err := r.gameID()
	if err != nil {
		return game.View{}, err
	}
	return r.client.View(ctx, id)
}

func (r *Remote) PendingEvent(ctx context.Context) (*game.Event, error) {
	id, err := r.gameID()
	if err != nil {
		return nil, err
	}
	return r.client.PendingEvent(ctx, id)
}

func (r *Remote) EndTurn(ctx context.Context) (game.TurnSummary, error) {
	id, err := r.gameID()
	if err != nil {
		return game.TurnSummary{}, err
	}
	out, err := r.client.EndTurn(ctx, id)
	if err != nil {
		return game.TurnSummary{}, err
	}
	r.replay(out.Summary, out.View)
	return out.Summary, nil
}

// replay emits what the engine emitted on the server during one turn.
func (r *Remote) replay(summary game.TurnSummary, v game.View) {
	for _, n := range v.State.Notifications {
		if n.Turn == summary.Turn {
			r.obs.Notification(n)
		}
	}
	for _, ev := range v.State.Events {
		if ev.ID == v.State.PendingEvent && ev.Pending() {
			r.obs.EventModal(ev)
		}
	}
	r.obs.TurnSummary(summary)
	if v.State.GameOver {
		r.obs.GameOver(v.State.GameOverReason, v.State.GameOverData)
	}
}

func (r *Remote) command(fn func(id string) (CommandResponse, error)) (game.Result, error) {
	id, err := r.gameID()
	if err != nil {
		return game.Result{}, err
	}
	out, err := fn(id)
	if err != nil {
		return game.Result{}, err
	}
	if out.View.State.GameOver {
		r.obs.GameOver(out.View.State.GameOverReason, out.View.State.GameOverData)
	}
	return out.Result, nil
}

func (r *Remote) Choose(ctx context.Context, eventID string, choice int) (game.Result, error) {
	return r.command(func(id string) (CommandResponse, error) { return r.client.Choose(ctx, id, eventID, choice) })
}

func (r *Remote) AllocateMarketing(ctx context.Context, channel string, amount float64) (game.Result, error) {
	return r.command(func(id string) (CommandResponse, error) {
		return r.client.AllocateMarketing(ctx, id, channel, amount)
	})
}

func (r *Remote) Hire(ctx context.Context, role string) (game.Result, error) {
	return r.command(func(id string) (CommandResponse, error) { return r.client.Hire(ctx, id, role) })
}

func (r *Remote) Fire(ctx context.Context, employeeID string) (game.Result, error) {
	return r.command(func(id string) (CommandResponse, error) { return r.client.Fire(ctx, id, employeeID) })
}

func (r *Remote) DevelopFeature(ctx context.Context, spec game.FeatureSpec) (game.Result, error) {
	return r.command(func(id string) (CommandResponse, error) { return r.client.DevelopFeature(ctx, id, spec) })
}

func (r *Remote) RaiseFunding(ctx context.Context, round string) (game.Result, error) {
	return r.command(func(id string) (CommandResponse, error) { return r.client.RaiseFunding(ctx, id, round) })
}
