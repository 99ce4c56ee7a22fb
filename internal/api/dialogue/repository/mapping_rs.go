package dialogueRepository

import (
	"SupportDesk/internal/api/dialogue"
	"SupportDesk/internal/entity"
	contextPkg "SupportDesk/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type IntentMappingDB struct {
	ID        sql.NullString `db:"id"`
	Intent    sql.NullString `db:"intent"`
	Phrases   sql.NullString `db:"phrases"`
	Priority  sql.NullInt64  `db:"priority"`
	IsActive  sql.NullBool   `db:"is_active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *mappingRepository) CreateMapping(c context.Context, mapping entity.IntentMapping) error {
	requestID := contextPkg.GetRequestID(c)

	phrasesJSON, err := json.Marshal(mapping.Phrases)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateMapping phrases marshal err")
		return err
	}

	argsKV := map[string]interface{}{
		"id":         mapping.ID,
		"intent":     mapping.Intent,
		"phrases":    string(phrasesJSON),
		"priority":   mapping.Priority,
		"is_active":  mapping.IsActive,
		"created_at": time.Now(),
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateMapping, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateMapping named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating intent mapping")

		return err
	}

	return nil
}

func (r *mappingRepository) UpdateMapping(c context.Context, mapping entity.IntentMapping) error {
	requestID := contextPkg.GetRequestID(c)

	phrasesJSON, err := json.Marshal(mapping.Phrases)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateMapping phrases marshal err")
		return err
	}

	argsKV := map[string]interface{}{
		"id":         mapping.ID,
		"intent":     mapping.Intent,
		"phrases":    string(phrasesJSON),
		"priority":   mapping.Priority,
		"is_active":  mapping.IsActive,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateMapping, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateMapping named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateMapping execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateMapping rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("UpdateMapping no rows affected")

		return dialogue.ErrMappingNotFound
	}

	return nil
}

func (r *mappingRepository) DeleteMapping(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteMapping, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteMapping named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteMapping execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteMapping rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("DeleteMapping no rows affected")

		return dialogue.ErrMappingNotFound
	}

	return nil
}

func (r *mappingRepository) GetMappingByID(c context.Context, id string) (entity.IntentMapping, error) {
	requestID := contextPkg.GetRequestID(c)
	var mapping IntentMappingDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetMappingByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMappingByID named query preparation err")
		return entity.IntentMapping{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&mapping); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetMappingByID no rows found")
			return entity.IntentMapping{}, dialogue.ErrMappingNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMappingByID execution err")
		return entity.IntentMapping{}, err
	}

	return r.makeIntentMapping(mapping), nil
}

func (r *mappingRepository) GetActiveMappings(c context.Context) ([]entity.IntentMapping, error) {
	requestID := contextPkg.GetRequestID(c)
	var mappings []IntentMappingDB

	query := r.q.Rebind(queryGetActiveMappings)

	if err := r.q.SelectContext(c, &mappings, query); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveMappings execution err")
		return nil, err
	}

	result := make([]entity.IntentMapping, 0, len(mappings))
	for _, mapping := range mappings {
		result = append(result, r.makeIntentMapping(mapping))
	}

	return result, nil
}

func (r *mappingRepository) makeIntentMapping(mapping IntentMappingDB) entity.IntentMapping {
	var phrases []string
	if mapping.Phrases.Valid && mapping.Phrases.String != "" {
		if err := json.Unmarshal([]byte(mapping.Phrases.String), &phrases); err != nil {
			r.log.WithFields(logrus.Fields{
				"mapping_id": mapping.ID.String,
				"error":      err.Error(),
			}).Warn("makeIntentMapping phrases unmarshal err")
		}
	}

	return entity.IntentMapping{
		ID:        mapping.ID.String,
		Intent:    mapping.Intent.String,
		Phrases:   phrases,
		Priority:  int(mapping.Priority.Int64),
		IsActive:  mapping.IsActive.Bool,
		CreatedAt: mapping.CreatedAt,
		UpdatedAt: mapping.UpdatedAt,
	}
}
