package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/avelkar/subweld/internal/asr"
	"github.com/avelkar/subweld/internal/merge"
	"github.com/avelkar/subweld/internal/subtitle"
	"github.com/avelkar/subweld/internal/workspace"
)

// ErrRunActive is returned when a start call arrives while a previous run
// has not finished. One recognition run at a time, period.
var ErrRunActive = errors.New("a recognition run is already active")

// Kind classifies run messages. The set is closed: consumers switch over
// it exhaustively.
type Kind string

const (
	KindProgress      Kind = "progress"
	KindSegmentResult Kind = "segment_result"
	KindLog           Kind = "log"
	KindCompleted     Kind = "completed"
	KindError         Kind = "error"
)

// Message is one event from a background run. Every message carries the
// identifier of the run that produced it, so a consumer that kept a channel
// from a finished run cannot mistake stale events for current ones.
type Message struct {
	RunID string
	Kind  Kind

	// SegmentResult and segment-scoped errors; -1 when not segment-scoped.
	SegmentIndex int

	// SegmentResult: path of the fragment just written.
	FragmentPath string

	// Progress: completed fraction in [0,1].
	Fraction float64

	// Log text.
	Text string

	// Error detail.
	Err error
}

// Runner executes recognition runs on a background goroutine and reports
// through a message channel. The channel is closed after the Completed
// message, which is always the final message of a run, success or not.
type Runner struct {
	transcriber asr.Transcriber

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
}

func NewRunner(t asr.Transcriber) *Runner {
	return &Runner{transcriber: t}
}

// StartFull recognizes every segment in order, then merges all fragments
// into the global track at trackPath.
func (r *Runner) StartFull(ctx context.Context, artifacts []workspace.SegmentArtifact, trackPath string) (<-chan Message, error) {
	return r.startBatch(ctx, artifacts, artifacts, 0, trackPath)
}

// StartResume recognizes only the missing segments, counting the already
// completed ones toward progress, then merges the full fragment set. The
// merged track is rebuilt from every fragment, not just the new ones.
func (r *Runner) StartResume(ctx context.Context, all []workspace.SegmentArtifact, c workspace.Completion, trackPath string) (<-chan Message, error) {
	batch := workspace.PlanResume(all, c)
	return r.startBatch(ctx, all, batch, len(c.Completed), trackPath)
}

// StartSegment recognizes a single segment by index, then re-merges every
// existing fragment.
func (r *Runner) StartSegment(ctx context.Context, all []workspace.SegmentArtifact, index int, trackPath string) (<-chan Message, error) {
	var batch []workspace.SegmentArtifact
	for _, a := range all {
		if a.Index == index {
			batch = append(batch, a)
		}
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("no segment with index %d", index)
	}

	// the target's own fragment does not count as done; it is being redone
	done := 0
	for _, i := range workspace.ScanCompletion(all).Completed {
		if i != index {
			done++
		}
	}
	return r.startBatch(ctx, all, batch, done, trackPath)
}

// StartWindow recognizes one manually cut range and reconciles its entries
// into the existing global track: entries overlapping [start,end) are
// removed, the new ones inserted in time order. The segment fragments are
// untouched and the track is not re-merged.
func (r *Runner) StartWindow(ctx context.Context, audioPath string, start, end float64, trackPath string) (<-chan Message, error) {
	runCtx, ch, id, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		defer r.finish(ch)

		fragPath, err := r.transcriber.Transcribe(runCtx, audioPath)
		if err != nil {
			ch <- Message{RunID: id, Kind: KindError, SegmentIndex: -1, Err: err}
			ch <- Message{RunID: id, Kind: KindCompleted, SegmentIndex: -1}
			return
		}
		ch <- Message{RunID: id, Kind: KindSegmentResult, SegmentIndex: -1, FragmentPath: fragPath}

		if err := reconcileWindow(fragPath, start, end, trackPath); err != nil {
			ch <- Message{RunID: id, Kind: KindError, SegmentIndex: -1, Err: err}
		} else {
			ch <- Message{RunID: id, Kind: KindLog, SegmentIndex: -1,
				Text: fmt.Sprintf("reconciled %s over [%.2f, %.2f)", trackPath, start, end)}
			ch <- Message{RunID: id, Kind: KindProgress, SegmentIndex: -1, Fraction: 1}
		}
		ch <- Message{RunID: id, Kind: KindCompleted, SegmentIndex: -1}
	}()

	return ch, nil
}

// Cancel hard-cancels the active run, if any. The in-flight engine process
// is killed; fragments already on disk stay valid for a later resume.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runner) begin(ctx context.Context) (context.Context, chan Message, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return nil, nil, "", ErrRunActive
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.active = true
	r.cancel = cancel

	// buffered so the worker never stalls on a slow consumer mid-segment
	ch := make(chan Message, 64)
	return runCtx, ch, uuid.NewString(), nil
}

func (r *Runner) finish(ch chan Message) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.active = false
	r.mu.Unlock()
	close(ch)
}

// startBatch runs the batch strictly sequentially in slice order. A failed
// segment gets an Error message and the batch continues; only context
// cancellation stops it early. After the batch, every fragment that exists
// on disk is merged into the global track.
func (r *Runner) startBatch(ctx context.Context, all, batch []workspace.SegmentArtifact, alreadyCompleted int, trackPath string) (<-chan Message, error) {
	runCtx, ch, id, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		defer r.finish(ch)

		total := len(all)
		done := alreadyCompleted

		for _, artifact := range batch {
			if runCtx.Err() != nil {
				ch <- Message{RunID: id, Kind: KindError, SegmentIndex: artifact.Index, Err: runCtx.Err()}
				break
			}

			ch <- Message{RunID: id, Kind: KindLog, SegmentIndex: artifact.Index,
				Text: fmt.Sprintf("recognizing segment %d (%s)", artifact.Index, artifact.AudioPath)}

			fragPath, err := r.transcriber.Transcribe(runCtx, artifact.AudioPath)
			if err != nil {
				ch <- Message{RunID: id, Kind: KindError, SegmentIndex: artifact.Index, Err: err}
				if runCtx.Err() != nil {
					break
				}
				continue
			}

			done++
			ch <- Message{RunID: id, Kind: KindSegmentResult, SegmentIndex: artifact.Index, FragmentPath: fragPath}
			ch <- Message{RunID: id, Kind: KindProgress, SegmentIndex: artifact.Index,
				Fraction: float64(done) / float64(total)}
		}

		fragments := workspace.Fragments(all)
		if len(fragments) > 0 {
			if err := merge.Merge(fragments, trackPath); err != nil {
				ch <- Message{RunID: id, Kind: KindError, SegmentIndex: -1, Err: err}
			} else {
				ch <- Message{RunID: id, Kind: KindLog, SegmentIndex: -1,
					Text: fmt.Sprintf("merged %d fragments into %s", len(fragments), trackPath)}
			}
		}

		ch <- Message{RunID: id, Kind: KindCompleted, SegmentIndex: -1}
	}()

	return ch, nil
}

// reconcileWindow splices a window fragment into the global track. A
// missing track file means the window is the first content; reconciliation
// then runs against an empty track.
func reconcileWindow(fragPath string, start, end float64, trackPath string) error {
	fragment, err := subtitle.ParseFile(fragPath)
	if err != nil {
		return fmt.Errorf("failed to parse window fragment: %w", err)
	}
	fragment.Shift(start)

	track := &subtitle.Track{}
	if _, err := os.Stat(trackPath); err == nil {
		track, err = subtitle.ParseFile(trackPath)
		if err != nil {
			return fmt.Errorf("failed to parse global track: %w", err)
		}
	}

	if err := subtitle.ReconcileWindow(track, start, end, fragment.Entries); err != nil {
		return err
	}
	return track.WriteFile(trackPath)
}
