package splash_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/splash"
	"github.com/aretw0/splash/pkg/clock"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/random"
)

// ExampleNew drives a splash on a manual clock so the output is deterministic.
func ExampleNew() {
	clk := clock.NewManual(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	s, err := splash.New(
		splash.WithClock(clk),
		splash.WithRandom(random.Fixed(0.5)), // short gaps, no fault
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	for _, at := range []time.Duration{300, 500, 500, 500, 500, 500} {
		clk.Advance(at * time.Millisecond)
		p := s.Progress()
		fmt.Printf("%d/%d %.0f%%\n", p.Completed, p.Total, p.Percent)
	}

	clk.Advance(6 * time.Second)
	fmt.Println("visible:", s.Snapshot().Visible)

	// Output:
	// 1/6 17%
	// 2/6 33%
	// 3/6 50%
	// 4/6 67%
	// 5/6 83%
	// 6/6 100%
	// visible: false
}

// ExampleWithLifecycleHooks shows the transient fault on the database step.
func ExampleWithLifecycleHooks() {
	clk := clock.NewManual(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	tm := domain.DefaultTiming()
	tm.FaultProbability = 1

	s, err := splash.New(
		splash.WithClock(clk),
		splash.WithRandom(random.Fixed(0.5)),
		splash.WithTiming(tm),
		splash.WithLifecycleHooks(domain.LifecycleHooks{
			OnStepFault: func(ctx context.Context, e *domain.StepEvent) {
				fmt.Println("fault:", e.Fault.Message)
			},
			OnStepRecovered: func(ctx context.Context, e *domain.StepEvent) {
				fmt.Println("recovered:", e.Step.Label)
			},
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	_ = s.Start(context.Background())
	clk.Advance(3 * time.Second)

	// Output:
	// fault: Database connection delayed. Retrying...
	// recovered: Connecting to database
}
