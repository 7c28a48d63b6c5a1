package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wikigraph/wikigraph/internal/model"
)

// recordingStep records whether it ran and can fail on demand.
type recordingStep struct {
	name string
	err  error
	ran  bool
}

func (s *recordingStep) Do(_ context.Context, _ *model.CrawlReport) error {
	s.ran = true
	return s.err
}

func (s *recordingStep) Name() string {
	return s.name
}

// TestPipelineExecute tests step orchestration.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		first := &recordingStep{name: "first"}
		second := &recordingStep{name: "second"}

		p := New()
		p.AddSteps(first, second)

		report := model.NewCrawlReport("hollowknight", "Hollow_Knight")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("failed to execute: %v", err)
		}

		if !first.ran || !second.ran {
			t.Error("expected both steps to run")
		}

		want := []string{"first", "second"}
		if !reflect.DeepEqual(report.PerformedSteps, want) {
			t.Errorf("expected performed steps %v, got %v", want, report.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("step broke")
		failing := &recordingStep{name: "failing", err: stepErr}
		after := &recordingStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		report := model.NewCrawlReport("hollowknight", "Hollow_Knight")
		if err := p.Execute(context.Background(), report); !errors.Is(err, stepErr) {
			t.Fatalf("expected step error, got %v", err)
		}

		if after.ran {
			t.Error("expected later step skipped after error")
		}
		if report.ErrorMessage != "step broke" {
			t.Errorf("expected error recorded, got %q", report.ErrorMessage)
		}
	})

	t.Run("continue on error runs remaining steps", func(t *testing.T) {
		t.Parallel()

		failing := &recordingStep{name: "failing", err: errors.New("step broke")}
		after := &recordingStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		report := model.NewCrawlReport("hollowknight", "Hollow_Knight")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("expected nil with continueOnError, got %v", err)
		}

		if !after.ran {
			t.Error("expected later step to run")
		}
	})

	t.Run("cancelled context stops before the next step", func(t *testing.T) {
		t.Parallel()

		step := &recordingStep{name: "never"}
		p := New()
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := model.NewCrawlReport("hollowknight", "Hollow_Knight")
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if step.ran {
			t.Error("expected step skipped after cancellation")
		}
	})

	t.Run("reports step names and count", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&recordingStep{name: "a"}, &recordingStep{name: "b"})

		if p.StepCount() != 2 {
			t.Errorf("expected 2 steps, got %d", p.StepCount())
		}

		want := []string{"a", "b"}
		if !reflect.DeepEqual(p.StepNames(), want) {
			t.Errorf("expected %v, got %v", want, p.StepNames())
		}
	})
}
