package downloader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/DeafChair/XOSS-Database-Browser/pkg/autoindex"
)

// MaxFailureSamples is how many failure messages a Summary retains
// verbatim; further failures are only counted.
const MaxFailureSamples = 5

// Task is one top-level download selected by the user. A directory task
// mirrors a whole subtree, a file task fetches a single file.
type Task struct {
	URL  string
	Kind autoindex.Kind
	Name string
}

// Summary is the aggregate outcome of a batch. Cancelled counts the
// tasks that never ran or noticed cancellation mid-flight; they appear
// in no other tally and leave no history records.
type Summary struct {
	Total           int
	Succeeded       int
	Failed          int
	Cancelled       int
	FailureSamples  []string
	OmittedFailures int
}

// String renders the summary the way the batch result is shown to the
// user.
func (s Summary) String() string {
	if s.Cancelled > 0 {
		return fmt.Sprintf("download cancelled: %d succeeded, %d failed, %d cancelled",
			s.Succeeded, s.Failed, s.Cancelled)
	}
	out := fmt.Sprintf("download complete: %d succeeded, %d failed", s.Succeeded, s.Failed)
	for _, sample := range s.FailureSamples {
		out += "\n  " + sample
	}
	if s.OmittedFailures > 0 {
		out += fmt.Sprintf("\n  ... and %d more failures", s.OmittedFailures)
	}
	return out
}

// RunBatch executes tasks against downloadDir on a fixed pool of
// maxConcurrency workers. The cancellation token is checked before each
// task is handed to the pool; once cancelled, no further tasks start,
// while in-flight tasks run to their own poll points. Outcomes are
// tallied in completion order. A task finishing successfully after
// cancellation still counts as succeeded. The shared gauge tracks
// completed tasks and resets to zero when the batch ends, however it
// ends.
func (d *Downloader) RunBatch(ctx context.Context, tasks []Task, downloadDir string, maxConcurrency int) Summary {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	total := len(tasks)

	defer d.resetProgress()

	var (
		mu        sync.Mutex
		succeeded int
		failed    int
		done      int
		failures  []string
	)

	jobs := make(chan Task)
	var wg sync.WaitGroup
	for i := 0; i < maxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				err := d.runTask(ctx, task, downloadDir)

				mu.Lock()
				done++
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, context.Canceled) || ctx.Err() != nil:
					// Cancelled mid-flight: lands in the remainder.
				default:
					failed++
					failures = append(failures, fmt.Sprintf("%s: %v", task.Name, err))
				}
				if total > 0 {
					d.setProgress(float64(done * 100 / total))
				}
				mu.Unlock()
			}
		}()
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- task:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	samples := failures
	if len(samples) > MaxFailureSamples {
		samples = samples[:MaxFailureSamples]
	}
	summary := Summary{
		Total:           total,
		Succeeded:       succeeded,
		Failed:          failed,
		Cancelled:       total - succeeded - failed,
		FailureSamples:  samples,
		OmittedFailures: len(failures) - len(samples),
	}

	d.log.Info("batch finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("cancelled", summary.Cancelled),
	)
	return summary
}

// runTask dispatches one task. A directory task mirrors its subtree
// under downloadDir. A file task lands in a grouping directory named
// after the URL's second-to-last raw segment, the same name the file's
// parent shows in a listing; URLs with fewer than two segments fall
// back to downloadDir itself.
func (d *Downloader) runTask(ctx context.Context, task Task, downloadDir string) error {
	if task.Kind == autoindex.KindDirectory {
		_, err := d.DownloadTree(ctx, task.URL, downloadDir)
		return err
	}

	dest := downloadDir
	if seg := autoindex.ParentSegment(task.URL); seg != "" {
		dest = filepath.Join(downloadDir, seg)
	}
	_, err := d.Download(ctx, task.URL, dest)
	return err
}
