package fleet

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	taskPanicTemplateConstant = "task panicked: %v"
)

// Phase labels the stage a task belongs to.
type Phase string

const (
	// PhaseClone obtains missing repositories.
	PhaseClone Phase = "CLONE"
	// PhaseUpdate reconciles existing repositories.
	PhaseUpdate Phase = "UPDATE"
)

// Task is one unit of per-repository work.
type Task struct {
	RepositoryName string
	RepositoryPath string
	Phase          Phase
	Run            func(executionContext context.Context) error
}

// TaskResult records the outcome of one task.
type TaskResult struct {
	RepositoryName string
	RepositoryPath string
	Phase          Phase
	Err            error
}

// Failed reports whether the task returned an error or panicked.
func (result TaskResult) Failed() bool {
	return result.Err != nil
}

// TaskPanicError reports a task that panicked.
type TaskPanicError struct {
	Value any
}

// Error describes the recovered panic.
func (panicError TaskPanicError) Error() string {
	return fmt.Sprintf(taskPanicTemplateConstant, panicError.Value)
}

// Pool runs tasks with bounded concurrency.
type Pool struct {
	// Concurrency caps simultaneous tasks; zero or negative uses runtime.NumCPU().
	Concurrency int
}

// Run executes every task and returns one result per task in completion order.
// A failing task never cancels its siblings.
func (pool Pool) Run(executionContext context.Context, tasks []Task) []TaskResult {
	results := make([]TaskResult, 0, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var resultsMutex sync.Mutex
	var group errgroup.Group
	group.SetLimit(pool.limit())

	for _, task := range tasks {
		task := task
		group.Go(func() error {
			taskResult := TaskResult{
				RepositoryName: task.RepositoryName,
				RepositoryPath: task.RepositoryPath,
				Phase:          task.Phase,
				Err:            runTask(executionContext, task),
			}
			resultsMutex.Lock()
			results = append(results, taskResult)
			resultsMutex.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func (pool Pool) limit() int {
	if pool.Concurrency <= 0 {
		return runtime.NumCPU()
	}
	return pool.Concurrency
}

func runTask(executionContext context.Context, task Task) (taskError error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			taskError = TaskPanicError{Value: recovered}
		}
	}()
	if task.Run == nil {
		return nil
	}
	return task.Run(executionContext)
}
