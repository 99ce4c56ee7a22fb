package dialogueService

import (
	dialogueRepository "SupportDesk/internal/api/dialogue/repository"
	"SupportDesk/internal/entity"
	"context"
)

type repositorySink struct {
	repo dialogueRepository.Repository
}

// NewRepositorySink stores submission records in Postgres. It is the default
// sink; swap in the Google Sheets client to mirror records into a spreadsheet.
func NewRepositorySink(repo dialogueRepository.Repository) SubmissionSink {
	return &repositorySink{repo: repo}
}

func (s *repositorySink) AppendSubmission(ctx context.Context, record entity.SubmissionRecord) error {
	client, err := s.repo.NewClient(false)
	if err != nil {
		return err
	}

	return client.Submissions.CreateSubmission(ctx, record)
}

// fanoutSink writes to every sink in order and fails on the first error, so
// the primary store always comes first.
type fanoutSink struct {
	sinks []SubmissionSink
}

func NewFanoutSink(sinks ...SubmissionSink) SubmissionSink {
	return &fanoutSink{sinks: sinks}
}

func (s *fanoutSink) AppendSubmission(ctx context.Context, record entity.SubmissionRecord) error {
	for _, sink := range s.sinks {
		if err := sink.AppendSubmission(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
