package taskwarrior

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

// Runner executes the task binary and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

type Client struct {
	run Runner
}

func NewClient() *Client {
	return &Client{run: execTask}
}

// NewClientWithRunner replaces the task binary, for tests.
func NewClientWithRunner(run Runner) *Client {
	return &Client{run: run}
}

func execTask(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "task", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}
	return output, nil
}

// GetTasks exports the tasks matching filter. Hooks are disabled so
// exporting never triggers other integrations.
func (c *Client) GetTasks(ctx context.Context, filter []string) ([]Task, error) {
	args := append(append([]string{}, filter...), "export", "rc.hooks=0")
	output, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if err := json.Unmarshal(output, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal taskwarrior output: %w", err)
	}
	return tasks, nil
}

func (c *Client) Name() string { return "taskwarrior" }

// Tasks returns pending, unblocked tasks, most urgent first.
func (c *Client) Tasks(ctx context.Context) ([]model.Task, error) {
	twTasks, err := c.GetTasks(ctx, []string{"status:" + PENDING})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(twTasks, func(i, j int) bool {
		return twTasks[i].Urgency > twTasks[j].Urgency
	})

	var out []model.Task
	for _, t := range twTasks {
		if t.Status != PENDING || t.Blocked() {
			continue
		}
		out = append(out, t.ToTask())
	}
	return out, nil
}

// ParseTask parses a single task JSON from an io.Reader.
func (c *Client) ParseTask(r io.Reader) (Task, error) {
	var task Task
	if err := json.NewDecoder(r).Decode(&task); err != nil {
		return Task{}, fmt.Errorf("failed to decode task json: %w", err)
	}
	return task, nil
}
