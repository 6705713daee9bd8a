package messaging

import (
	"context"
	"errors"

	"github.com/kesher-io/kesher/internal/application/common"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

const sequenceBatchSize = 200

type TemplateSender interface {
	SendTemplate(ctx context.Context, templateName string, contactID uint, vars map[string]string) error
}

type ProcessSequencesResult struct {
	Sent      int
	Failed    int
	Cancelled int
}

// ProcessSequencesUseCase sends the due step of every active enrollment.
type ProcessSequencesUseCase struct {
	sequences   messaging.SequenceRepository
	enrollments messaging.EnrollmentRepository
	sender      TemplateSender
	logger      logger.Interface
}

func NewProcessSequencesUseCase(
	sequences messaging.SequenceRepository,
	enrollments messaging.EnrollmentRepository,
	sender TemplateSender,
	logger logger.Interface,
) *ProcessSequencesUseCase {
	return &ProcessSequencesUseCase{
		sequences:   sequences,
		enrollments: enrollments,
		sender:      sender,
		logger:      logger,
	}
}

func (uc *ProcessSequencesUseCase) Execute(ctx context.Context) (*ProcessSequencesResult, error) {
	now := biztime.NowUTC()
	due, err := uc.enrollments.ListDue(ctx, now, sequenceBatchSize)
	if err != nil {
		uc.logger.Errorw("failed to list due enrollments", "error", err)
		return nil, err
	}

	result := &ProcessSequencesResult{}
	cache := make(map[uint]*messaging.EmailSequence)
	for _, e := range due {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		seq, ok := cache[e.SequenceID()]
		if !ok {
			seq, err = uc.sequences.GetByID(ctx, e.SequenceID())
			if err != nil && !apperrors.IsNotFoundError(err) {
				uc.logger.Errorw("failed to load sequence", "error", err, "sequence_id", e.SequenceID())
				continue
			}
			cache[e.SequenceID()] = seq
		}
		uc.process(ctx, seq, e, result)
	}

	if len(due) > 0 {
		uc.logger.Infow("sequence steps processed",
			"sent", result.Sent,
			"failed", result.Failed,
			"cancelled", result.Cancelled,
		)
	}
	return result, nil
}

func (uc *ProcessSequencesUseCase) process(ctx context.Context, seq *messaging.EmailSequence, e *messaging.Enrollment, result *ProcessSequencesResult) {
	log := uc.logger.With("enrollment_id", e.ID(), "contact_id", e.ContactID())

	if seq == nil || !seq.IsActive() {
		e.Cancel()
		result.Cancelled++
		uc.save(ctx, e, log)
		return
	}

	step, ok := seq.Step(e.CurrentStep())
	if !ok {
		e.Advance(seq, biztime.NowUTC())
		uc.save(ctx, e, log)
		return
	}

	err := uc.sender.SendTemplate(ctx, step.TemplateName, e.ContactID(), map[string]string{
		"SequenceName": seq.Name(),
	})
	switch {
	case err == nil:
		e.Advance(seq, biztime.NowUTC())
		result.Sent++
	case errors.Is(err, common.ErrNoRecipient), apperrors.IsNotFoundError(err):
		// Nothing will change on retry.
		log.Warnw("cancelling enrollment", "template", step.TemplateName, "reason", err)
		e.Cancel()
		result.Cancelled++
	default:
		log.Warnw("failed to send sequence step, will retry", "template", step.TemplateName, "error", err)
		result.Failed++
		return
	}
	uc.save(ctx, e, log)
}

func (uc *ProcessSequencesUseCase) save(ctx context.Context, e *messaging.Enrollment, log logger.Interface) {
	if err := uc.enrollments.Update(ctx, e); err != nil {
		log.Errorw("failed to save enrollment", "error", err)
	}
}
