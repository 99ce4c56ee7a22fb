package dialogueService

import (
	"SupportDesk/internal/api/dialogue"
	dialogueRepository "SupportDesk/internal/api/dialogue/repository"
	"SupportDesk/internal/entity"
	"SupportDesk/pkg/classifier"
	redisPkg "SupportDesk/pkg/redis"
	"SupportDesk/pkg/s3"
	"SupportDesk/pkg/similarity"
	"SupportDesk/pkg/smtp"
	"SupportDesk/pkg/utils"
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

type IDialogueService interface {
	EnsureDefaultMappings(ctx context.Context) error

	HandleTurn(ctx context.Context, req dialogue.TurnRequest) (*dialogue.TurnResponse, error)
	GetHistory(ctx context.Context, conversationID string) (*dialogue.HistoryResponse, error)
	SimilarTickets(ctx context.Context, text string, k int) (*dialogue.SimilarResponse, error)

	GetMappings(ctx context.Context) ([]dialogue.MappingResponse, error)
	CreateMapping(ctx context.Context, req dialogue.MappingRequest) error
	UpdateMapping(ctx context.Context, id string, req dialogue.MappingRequest) error
	DeleteMapping(ctx context.Context, id string) error

	GetSubmissions(ctx context.Context, baseIntent string) ([]dialogue.SubmissionResponse, error)
	ExportSubmissions(ctx context.Context, req dialogue.ExportRequest) (*dialogue.ExportResponse, error)
}

// SubmissionSink receives finalized submission records. The repository-backed
// sink is the default; the Google Sheets client satisfies the same interface.
type SubmissionSink interface {
	AppendSubmission(ctx context.Context, record entity.SubmissionRecord) error
}

type dialogueService struct {
	log          *logrus.Logger
	dialogueRepo dialogueRepository.Repository
	sessions     redisPkg.ISessionStore
	sink         SubmissionSink
	vectorizer   classifier.IVectorizer
	metaEncoder  classifier.IMetaEncoder
	primary      classifier.IPrimaryClassifier
	secondary    classifier.ISecondaryClassifier
	index        similarity.IIndex
	mailer       smtp.ItfSmtp
	s3Client     s3.ItfS3
	utils        utils.IUtils
	config       *DialogueConfig

	locks sync.Map
}

type DialogueConfig struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	DefaultCategory     string  `json:"default_category"`
	DefaultHour         int     `json:"default_hour"`
	HistoryLimit        int     `json:"history_limit"`
	SimilarNeighbors    int     `json:"similar_neighbors"`
}

func LoadConfig() *DialogueConfig {
	config := &DialogueConfig{
		ConfidenceThreshold: 0.4,
		DefaultCategory:     "Electronics",
		DefaultHour:         12,
		HistoryLimit:        50,
		SimilarNeighbors:    3,
	}

	if raw := os.Getenv("DIALOGUE_CONFIDENCE_THRESHOLD"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			config.ConfidenceThreshold = parsed
		}
	}
	if raw := os.Getenv("DEFAULT_PRODUCT_CATEGORY"); raw != "" {
		config.DefaultCategory = raw
	}
	if raw := os.Getenv("SESSION_HISTORY_LIMIT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			config.HistoryLimit = parsed
		}
	}

	return config
}

func NewDialogueService(
	log *logrus.Logger,
	dialogueRepo dialogueRepository.Repository,
	sessions redisPkg.ISessionStore,
	sink SubmissionSink,
	models *classifier.Models,
	index similarity.IIndex,
	mailer smtp.ItfSmtp,
	s3Client s3.ItfS3,
	utils utils.IUtils,
	config *DialogueConfig,
) IDialogueService {
	return &dialogueService{
		log:          log,
		dialogueRepo: dialogueRepo,
		sessions:     sessions,
		sink:         sink,
		vectorizer:   models.Vectorizer,
		metaEncoder:  models.MetaEncoder,
		primary:      models.Primary,
		secondary:    models.Secondary,
		index:        index,
		mailer:       mailer,
		s3Client:     s3Client,
		utils:        utils,
		config:       config,
	}
}

// lockFor serializes turns within one conversation so two concurrent messages
// cannot both load the same session snapshot.
func (s *dialogueService) lockFor(conversationID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(conversationID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
