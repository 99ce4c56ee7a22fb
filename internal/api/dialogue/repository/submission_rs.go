package dialogueRepository

import (
	"SupportDesk/internal/entity"
	contextPkg "SupportDesk/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type SubmissionRecordDB struct {
	ID          sql.NullString `db:"id"`
	BaseIntent  sql.NullString `db:"base_intent"`
	Intent      sql.NullString `db:"intent"`
	Slots       sql.NullString `db:"slots"`
	SubmittedAt time.Time      `db:"submitted_at"`
}

func (r *submissionRepository) CreateSubmission(c context.Context, record entity.SubmissionRecord) error {
	requestID := contextPkg.GetRequestID(c)

	slotsJSON, err := json.Marshal(record.Slots)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateSubmission slots marshal err")
		return err
	}

	argsKV := map[string]interface{}{
		"id":           record.ID,
		"base_intent":  record.Intent.Base,
		"intent":       record.Intent.String(),
		"slots":        string(slotsJSON),
		"submitted_at": record.SubmittedAt,
	}

	query, args, err := sqlx.Named(queryCreateSubmission, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateSubmission named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating submission record")

		return err
	}

	return nil
}

func (r *submissionRepository) GetSubmissionsByBaseIntent(c context.Context, baseIntent string) ([]entity.SubmissionRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var records []SubmissionRecordDB

	argsKV := map[string]interface{}{
		"base_intent": baseIntent,
	}

	query, args, err := sqlx.Named(queryGetSubmissionsByBaseIntent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSubmissionsByBaseIntent named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &records, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSubmissionsByBaseIntent execution err")
		return nil, err
	}

	result := make([]entity.SubmissionRecord, 0, len(records))
	for _, record := range records {
		result = append(result, r.makeSubmissionRecord(record))
	}

	return result, nil
}

func (r *submissionRepository) GetAllSubmissions(c context.Context) ([]entity.SubmissionRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var records []SubmissionRecordDB

	query := r.q.Rebind(queryGetAllSubmissions)

	if err := r.q.SelectContext(c, &records, query); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllSubmissions execution err")
		return nil, err
	}

	result := make([]entity.SubmissionRecord, 0, len(records))
	for _, record := range records {
		result = append(result, r.makeSubmissionRecord(record))
	}

	return result, nil
}

func (r *submissionRepository) makeSubmissionRecord(record SubmissionRecordDB) entity.SubmissionRecord {
	slots := make(map[string]string)
	if record.Slots.Valid && record.Slots.String != "" {
		if err := json.Unmarshal([]byte(record.Slots.String), &slots); err != nil {
			r.log.WithFields(logrus.Fields{
				"submission_id": record.ID.String,
				"error":         err.Error(),
			}).Warn("makeSubmissionRecord slots unmarshal err")
		}
	}

	return entity.SubmissionRecord{
		ID:          record.ID.String,
		Intent:      entity.ParseIntent(record.Intent.String),
		Slots:       slots,
		SubmittedAt: record.SubmittedAt,
	}
}
