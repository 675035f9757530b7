package publishing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const DefaultInterval = 5 * time.Second

// Poller tracks the remote state of the SIS grade sync job. It holds a single
// JobStatus and StatusReport, re-checks while the job is in progress and
// issues the publish request on user demand.
type Poller struct {
	transport Transport
	presenter Presenter
	scheduler Scheduler
	recorder  Recorder
	tracker   *CheckTracker
	logger    *slog.Logger
	interval  time.Duration
	course    string
	now       func() time.Time

	// deliverMu keeps presenter calls in the order state was applied.
	// Lock order is deliverMu then mu.
	deliverMu sync.Mutex

	mu         sync.Mutex
	status     JobStatus
	report     StatusReport
	timer      Timer
	timerSeq   uint64
	checking   bool
	publishing bool
	epoch      uint64
	stopped    bool
}

// Option configures a Poller
type Option func(*Poller)

func WithScheduler(s Scheduler) Option {
	return func(p *Poller) { p.scheduler = s }
}

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) { p.logger = logger }
}

func WithRecorder(r Recorder) Option {
	return func(p *Poller) { p.recorder = r }
}

// WithCourse sets the course identifier attached to recorded transitions
func WithCourse(course string) Option {
	return func(p *Poller) { p.course = course }
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// New creates a poller in the unknown state with an empty report
func New(transport Transport, presenter Presenter, opts ...Option) *Poller {
	p := &Poller{
		transport: transport,
		presenter: presenter,
		scheduler: timeScheduler{},
		interval:  DefaultInterval,
		now:       time.Now,
		status:    StatusUnknown,
		report:    StatusReport{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.tracker = NewCheckTracker(p.now)
	return p
}

// Snapshot is a copy of the poller state. Active is true while a check or
// publish request is outstanding or a follow-up check is scheduled.
type Snapshot struct {
	Status   JobStatus
	Report   StatusReport
	Progress CheckProgress
	Active   bool
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Status:   p.status,
		Report:   p.report.Clone(),
		Progress: p.tracker.GetProgress(),
		Active:   !p.stopped && (p.checking || p.publishing || p.timer != nil),
	}
}

func (p *Poller) Tracker() *CheckTracker {
	return p.tracker
}

// ConfirmPrompt returns the confirmation text for the current status and
// whether a publish would be attempted at all.
func (p *Poller) ConfirmPrompt() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.publishing || !p.status.CanPublish() {
		return "", false
	}
	return ConfirmMessage(p.status), true
}

// TriggerCheck requests the current job status. A response without an
// overall status leaves state untouched. A transport failure stops polling
// without notifying the presenter.
func (p *Poller) TriggerCheck(ctx context.Context) {
	p.mu.Lock()
	if !p.beginCheckLocked() {
		p.mu.Unlock()
		return
	}
	epoch := p.epoch
	p.mu.Unlock()

	p.runCheck(ctx, epoch)
}

// beginCheckLocked marks a check in flight unless one cannot start
func (p *Poller) beginCheckLocked() bool {
	if p.stopped || p.checking || p.publishing {
		return false
	}
	p.checking = true
	p.cancelTimerLocked()
	return true
}

func (p *Poller) runCheck(ctx context.Context, epoch uint64) {
	resp, err := p.transport.CheckStatus(ctx)

	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	p.mu.Lock()
	p.checking = false
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.tracker.SetCheckCompleted()

	if err != nil {
		p.mu.Unlock()
		// Polling ends here until the next manual check.
		p.logger.Warn("status check failed, polling stopped",
			"course", p.course,
			"error", &TransportError{Op: "check status", Err: err})
		return
	}

	if resp == nil || !resp.HasStatus {
		p.mu.Unlock()
		p.logger.Debug("status check returned no overall status", "course", p.course)
		return
	}

	if epoch != p.epoch {
		p.mu.Unlock()
		p.logger.Debug("discarding status check superseded by publish", "course", p.course)
		return
	}

	status, ok := ParseStatus(resp.OverallStatus)
	if !ok {
		p.logger.Warn("unrecognized overall status", "course", p.course, "status", resp.OverallStatus)
	}

	transition, changed := p.applyLocked(ctx, status, resp.Statuses)
	pres := Present(p.status, p.report, false)
	p.mu.Unlock()

	p.presenter.Update(pres)
	if changed {
		p.record(transition)
	}
}

// Publish asks for confirmation and starts the grade sync. It is a no-op
// while the job is in flight or before the first status is known.
func (p *Poller) Publish(ctx context.Context, confirm Confirmer) {
	message, ok := p.ConfirmPrompt()
	if !ok {
		return
	}
	if confirm == nil || !confirm.Confirm(message) {
		return
	}

	p.deliverMu.Lock()
	p.mu.Lock()
	// Status may have moved while the prompt was open.
	if p.stopped || p.publishing || !p.status.CanPublish() {
		p.mu.Unlock()
		p.deliverMu.Unlock()
		return
	}
	from := p.status
	p.publishing = true
	p.epoch++
	p.cancelTimerLocked()
	p.status = StatusPublishing
	p.report = StatusReport{}
	pres := Present(p.status, p.report, true)
	p.mu.Unlock()

	p.presenter.Update(pres)
	p.deliverMu.Unlock()
	p.record(Transition{Course: p.course, From: from, To: StatusPublishing, At: p.now()})
	p.logger.Info("publishing grades to SIS", "course", p.course, "from", from)

	resp, err := p.transport.Publish(ctx)
	if err != nil {
		err = &TransportError{Op: "publish", Err: err}
	} else if resp == nil || !resp.HasStatus || !publishAccepted(resp.OverallStatus) {
		err = ErrInvalidResponse
	}

	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	p.mu.Lock()
	p.publishing = false
	p.epoch++
	if p.stopped {
		p.mu.Unlock()
		return
	}

	if err != nil {
		transition, changed := p.applyLocked(ctx, StatusError, nil)
		pres := Present(p.status, p.report, false)
		p.mu.Unlock()

		var te *TransportError
		if errors.As(err, &te) {
			p.logger.Error("publish request failed", "course", p.course, "error", err)
		} else {
			p.logger.Error("publish returned an invalid status", "course", p.course, "error", err)
		}
		p.presenter.Flash(FlashPublishFailed)
		p.presenter.Update(pres)
		if changed {
			p.record(transition)
		}
		return
	}

	status, _ := ParseStatus(resp.OverallStatus)
	transition, changed := p.applyLocked(ctx, status, resp.Statuses)
	pres = Present(p.status, p.report, false)
	p.mu.Unlock()

	p.presenter.Update(pres)
	if changed {
		p.record(transition)
	}
}

// Stop cancels the scheduled re-check and waits for a delivery in progress.
// Responses arriving afterwards are dropped without reaching the presenter.
func (p *Poller) Stop() {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.cancelTimerLocked()
}

// applyLocked replaces status and report and arms the follow-up check while
// the job is in progress.
func (p *Poller) applyLocked(ctx context.Context, status JobStatus, report StatusReport) (Transition, bool) {
	from := p.status
	p.status = status
	if report == nil {
		report = StatusReport{}
	}
	p.report = report.Clone()

	if status.InProgress() {
		p.scheduleLocked(ctx)
	}

	t := Transition{
		Course: p.course,
		From:   from,
		To:     status,
		Report: p.report.Clone(),
		At:     p.now(),
	}
	return t, from != status
}

func (p *Poller) scheduleLocked(ctx context.Context) {
	p.cancelTimerLocked()
	p.timerSeq++
	seq := p.timerSeq
	p.timer = p.scheduler.AfterFunc(p.interval, func() {
		p.fire(ctx, seq)
	})
	p.tracker.SetNextCheck(p.now().Add(p.interval))
}

// fire hands the expired timer over to a check without releasing the lock,
// so Snapshot never sees an idle poller in between.
func (p *Poller) fire(ctx context.Context, seq uint64) {
	p.mu.Lock()
	if seq != p.timerSeq || p.timer == nil {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.tracker.ClearNextCheck()

	if ctx.Err() != nil || !p.beginCheckLocked() {
		p.mu.Unlock()
		return
	}
	epoch := p.epoch
	p.mu.Unlock()

	p.runCheck(ctx, epoch)
}

func (p *Poller) cancelTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
		p.tracker.ClearNextCheck()
	}
}

func (p *Poller) record(t Transition) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordTransition(t); err != nil {
		p.logger.Warn("failed to record status transition", "course", p.course, "error", err)
	}
}
