package dialogueService

import (
	"SupportDesk/internal/api/dialogue"
	"SupportDesk/internal/entity"
	contextPkg "SupportDesk/pkg/context"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

func (s *dialogueService) GetHistory(ctx context.Context, conversationID string) (*dialogue.HistoryResponse, error) {
	repo, err := s.dialogueRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	messages, err := repo.Messages.GetMessagesByConversationID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if len(messages) == 0 {
		return nil, dialogue.ErrConversationNotFound
	}

	entries := make([]entity.ChatEntry, 0, len(messages))
	for _, message := range messages {
		entries = append(entries, entity.ChatEntry{
			Role:    message.Role,
			Message: message.Message,
			At:      message.CreatedAt,
		})
	}

	return &dialogue.HistoryResponse{
		ConversationID: conversationID,
		Entries:        entries,
	}, nil
}

func (s *dialogueService) SimilarTickets(ctx context.Context, text string, k int) (*dialogue.SimilarResponse, error) {
	if k <= 0 {
		k = s.config.SimilarNeighbors
	}

	return &dialogue.SimilarResponse{
		Query:     text,
		Neighbors: s.index.Nearest(text, k),
	}, nil
}

func (s *dialogueService) GetMappings(ctx context.Context) ([]dialogue.MappingResponse, error) {
	repo, err := s.dialogueRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	mappings, err := repo.Mappings.GetActiveMappings(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dialogue.MappingResponse, 0, len(mappings))
	for _, mapping := range mappings {
		result = append(result, makeMappingResponse(mapping))
	}

	return result, nil
}

func (s *dialogueService) CreateMapping(ctx context.Context, req dialogue.MappingRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	if err := validateIntentLabel(req.Intent); err != nil {
		return err
	}

	repo, err := s.dialogueRepo.NewClient(true)
	if err != nil {
		return err
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	mapping := entity.IntentMapping{
		ID:       id,
		Intent:   req.Intent,
		Phrases:  req.Phrases,
		Priority: req.Priority,
		IsActive: isActive,
	}

	if err := repo.Mappings.CreateMapping(ctx, mapping); err != nil {
		if rollbackErr := repo.Rollback(); rollbackErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      rollbackErr.Error(),
			}).Error("CreateMapping rollback err")
		}
		return err
	}

	return repo.Commit()
}

func (s *dialogueService) UpdateMapping(ctx context.Context, id string, req dialogue.MappingRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	if err := validateIntentLabel(req.Intent); err != nil {
		return err
	}

	repo, err := s.dialogueRepo.NewClient(true)
	if err != nil {
		return err
	}

	existing, err := repo.Mappings.GetMappingByID(ctx, id)
	if err != nil {
		if rollbackErr := repo.Rollback(); rollbackErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      rollbackErr.Error(),
			}).Error("UpdateMapping rollback err")
		}
		return err
	}

	existing.Intent = req.Intent
	existing.Phrases = req.Phrases
	existing.Priority = req.Priority
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := repo.Mappings.UpdateMapping(ctx, existing); err != nil {
		if rollbackErr := repo.Rollback(); rollbackErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      rollbackErr.Error(),
			}).Error("UpdateMapping rollback err")
		}
		return err
	}

	return repo.Commit()
}

func (s *dialogueService) DeleteMapping(ctx context.Context, id string) error {
	repo, err := s.dialogueRepo.NewClient(false)
	if err != nil {
		return err
	}

	return repo.Mappings.DeleteMapping(ctx, id)
}

func (s *dialogueService) GetSubmissions(ctx context.Context, baseIntent string) ([]dialogue.SubmissionResponse, error) {
	repo, err := s.dialogueRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	var records []entity.SubmissionRecord
	if baseIntent == "" {
		records, err = repo.Submissions.GetAllSubmissions(ctx)
	} else {
		records, err = repo.Submissions.GetSubmissionsByBaseIntent(ctx, baseIntent)
	}
	if err != nil {
		return nil, err
	}

	result := make([]dialogue.SubmissionResponse, 0, len(records))
	for _, record := range records {
		result = append(result, dialogue.SubmissionResponse{
			ID:          record.ID,
			Intent:      record.Intent.String(),
			Slots:       record.Slots,
			SubmittedAt: record.SubmittedAt,
		})
	}

	return result, nil
}

// ExportSubmissions renders one base intent's records as CSV, uploads the file
// to S3 and hands back a presigned download link.
func (s *dialogueService) ExportSubmissions(ctx context.Context, req dialogue.ExportRequest) (*dialogue.ExportResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.dialogueRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	records, err := repo.Submissions.GetSubmissionsByBaseIntent(ctx, req.BaseIntent)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, dialogue.ErrNoSubmissions
	}

	data, err := renderSubmissionsCSV(records)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to render submissions CSV")
		return nil, dialogue.ErrExportFailed
	}

	objectKey := fmt.Sprintf("exports/%s-%d.csv", entity.ParseIntent(req.BaseIntent).Base, time.Now().Unix())

	if _, err := s.s3Client.UploadBytes(objectKey, data, "text/csv"); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"object_key": objectKey,
			"error":      err.Error(),
		}).Error("Failed to upload submissions export")
		return nil, dialogue.ErrExportFailed
	}

	url, err := s.s3Client.PresignUrl(objectKey)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"object_key": objectKey,
			"error":      err.Error(),
		}).Error("Failed to presign submissions export")
		return nil, dialogue.ErrExportFailed
	}

	return &dialogue.ExportResponse{
		ObjectKey: objectKey,
		URL:       url,
		Count:     len(records),
	}, nil
}

func renderSubmissionsCSV(records []entity.SubmissionRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"id", "intent", "slots", "submitted_at"}); err != nil {
		return nil, err
	}

	for _, record := range records {
		row := []string{
			record.ID,
			record.Intent.String(),
			formatSlots(record.Intent, record.Slots),
			record.SubmittedAt.Format(time.DateTime),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func validateIntentLabel(label string) error {
	intent := entity.ParseIntent(label)
	if intent.Base == "" {
		return dialogue.ErrInvalidIntentLabel
	}
	if intent.Base != GreetingLabel && requiredSlots(intent) == nil {
		return dialogue.ErrInvalidIntentLabel
	}
	return nil
}

func makeMappingResponse(mapping entity.IntentMapping) dialogue.MappingResponse {
	return dialogue.MappingResponse{
		ID:        mapping.ID,
		Intent:    mapping.Intent,
		Phrases:   mapping.Phrases,
		Priority:  mapping.Priority,
		IsActive:  mapping.IsActive,
		CreatedAt: mapping.CreatedAt.Format(time.RFC3339),
		UpdatedAt: mapping.UpdatedAt.Format(time.RFC3339),
	}
}
