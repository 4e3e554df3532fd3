package service

import "context"

// Job is a one-off task dispatched by name from job/main.go. CleanUp only runs
// after Init and Run succeed.
type Job interface {
	Init(ctx context.Context) error
	Run(ctx context.Context) error
	CleanUp(ctx context.Context) error
}
