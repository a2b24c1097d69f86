package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VitorBSK/Unit9-Raccoon/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

// JobIDObservationRun identifies queued observation runs for the worker
// fleet that crawls registered repositories.
const JobIDObservationRun = "raccoon.observation.run"

const (
	paramRepoKey     = "repo_key"
	paramRequestedBy = "requested_by"
)

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) NormalizeAttempt(opts core.ObservationJobNackOptions, attempt int) core.ObservationJobNackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// ToExecutionMessage maps an observation run to the go-job wire message.
// Repo key and requester travel as parameters next to the caller supplied
// ones; caller parameters never shadow them.
func ToExecutionMessage(msg *core.ObservationJobMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	parameters := copyAnyMap(msg.Parameters)
	parameters[paramRepoKey] = strings.TrimSpace(msg.RepoKey)
	parameters[paramRequestedBy] = strings.TrimSpace(msg.RequestedBy)
	return &job.ExecutionMessage{
		JobID:          JobIDObservationRun,
		Parameters:     parameters,
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
	}
}

// FromExecutionMessage maps a go-job message back into an observation run.
func FromExecutionMessage(msg *job.ExecutionMessage) *core.ObservationJobMessage {
	if msg == nil {
		return nil
	}
	parameters := copyAnyMap(msg.Parameters)
	repoKey, _ := parameters[paramRepoKey].(string)
	requestedBy, _ := parameters[paramRequestedBy].(string)
	delete(parameters, paramRepoKey)
	delete(parameters, paramRequestedBy)
	return &core.ObservationJobMessage{
		RepoKey:        strings.TrimSpace(repoKey),
		RequestedBy:    strings.TrimSpace(requestedBy),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		Parameters:     parameters,
	}
}

// ToNackOptions maps observation nack options to go-job.
func ToNackOptions(opts core.ObservationJobNackOptions) queue.NackOptions {
	return queue.NackOptions{
		Delay:      opts.Delay,
		Requeue:    opts.Requeue,
		DeadLetter: opts.DeadLetter,
		Reason:     opts.Reason,
	}
}

// FromNackOptions maps go-job nack options to the observation contract.
func FromNackOptions(opts queue.NackOptions) core.ObservationJobNackOptions {
	return core.ObservationJobNackOptions{
		Delay:      opts.Delay,
		Requeue:    opts.Requeue,
		DeadLetter: opts.DeadLetter,
		Reason:     opts.Reason,
	}
}

type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg *core.ObservationJobMessage) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: observation message is required")
	}
	if strings.TrimSpace(msg.RepoKey) == "" {
		return fmt.Errorf("gojob: observation message requires a repo key")
	}
	return a.enqueuer.Enqueue(ctx, ToExecutionMessage(msg))
}

type DeliveryAdapter struct {
	delivery queue.Delivery
	policy   RetryPolicy
}

func NewDeliveryAdapter(delivery queue.Delivery, policy RetryPolicy) *DeliveryAdapter {
	return &DeliveryAdapter{delivery: delivery, policy: policy}
}

func (d *DeliveryAdapter) Message() *core.ObservationJobMessage {
	if d == nil || d.delivery == nil {
		return nil
	}
	return FromExecutionMessage(d.delivery.Message())
}

func (d *DeliveryAdapter) Ack(ctx context.Context) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Ack(ctx)
}

func (d *DeliveryAdapter) Nack(ctx context.Context, opts core.ObservationJobNackOptions) error {
	return d.NackForAttempt(ctx, opts, 0)
}

func (d *DeliveryAdapter) NackForAttempt(ctx context.Context, opts core.ObservationJobNackOptions, attempt int) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	normalized := d.policy.NormalizeAttempt(opts, attempt)
	return d.delivery.Nack(ctx, ToNackOptions(normalized))
}

type DequeuerAdapter struct {
	dequeuer queue.Dequeuer
	policy   RetryPolicy
}

func NewDequeuerAdapter(dequeuer queue.Dequeuer, policy RetryPolicy) *DequeuerAdapter {
	return &DequeuerAdapter{dequeuer: dequeuer, policy: policy}
}

func (a *DequeuerAdapter) Dequeue(ctx context.Context) (core.ObservationJobDelivery, error) {
	if a == nil || a.dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := a.dequeuer.Dequeue(ctx)
	if err != nil {
		return nil, err
	}
	return NewDeliveryAdapter(delivery, a.policy), nil
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.ObservationJobEnqueuer = (*EnqueuerAdapter)(nil)
	_ core.ObservationJobDelivery = (*DeliveryAdapter)(nil)
	_ core.ObservationJobDequeuer = (*DequeuerAdapter)(nil)
)
