package dialogueRepository

import (
	"SupportDesk/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Messages:    &messageRepository{q: sqlExecutor, log: r.log},
		Submissions: &submissionRepository{q: sqlExecutor, log: r.log},
		Mappings:    &mappingRepository{q: sqlExecutor, log: r.log},
		Commit:      commitFunc,
		Rollback:    rollbackFunc,
	}, nil
}

type Client struct {
	Messages interface {
		CreateMessage(c context.Context, message entity.ConversationMessage) error
		GetMessagesByConversationID(c context.Context, conversationID string) ([]entity.ConversationMessage, error)
	}

	Submissions interface {
		CreateSubmission(c context.Context, record entity.SubmissionRecord) error
		GetSubmissionsByBaseIntent(c context.Context, baseIntent string) ([]entity.SubmissionRecord, error)
		GetAllSubmissions(c context.Context) ([]entity.SubmissionRecord, error)
	}

	Mappings interface {
		CreateMapping(c context.Context, mapping entity.IntentMapping) error
		UpdateMapping(c context.Context, mapping entity.IntentMapping) error
		DeleteMapping(c context.Context, id string) error
		GetMappingByID(c context.Context, id string) (entity.IntentMapping, error)
		GetActiveMappings(c context.Context) ([]entity.IntentMapping, error)
	}

	Commit   func() error
	Rollback func() error
}

type messageRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type submissionRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type mappingRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
