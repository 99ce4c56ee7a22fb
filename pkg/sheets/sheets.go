package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"SupportDesk/internal/entity"
)

type ItfSheets interface {
	AppendSubmission(ctx context.Context, record entity.SubmissionRecord) error
}

// sheetsClient appends finalized submission records to a spreadsheet, one tab
// per base intent, mirroring how agents review tickets grouped by queue.
type sheetsClient struct {
	service       *sheets.Service
	spreadsheetID string

	mu          sync.Mutex
	knownSheets map[string]bool
}

func New() (ItfSheets, error) {
	credsFile := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_FILE")
	spreadsheetID := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")

	if credsFile == "" || spreadsheetID == "" {
		return nil, fmt.Errorf("incomplete Google Sheets configuration")
	}

	raw, err := os.ReadFile(credsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(raw, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}

	ctx := context.Background()
	service, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &sheetsClient{
		service:       service,
		spreadsheetID: spreadsheetID,
		knownSheets:   make(map[string]bool),
	}, nil
}

func (s *sheetsClient) AppendSubmission(ctx context.Context, record entity.SubmissionRecord) error {
	baseIntent := record.Intent.Base

	if err := s.ensureSheet(ctx, baseIntent); err != nil {
		return err
	}

	slotsJSON, err := json.Marshal(record.Slots)
	if err != nil {
		return fmt.Errorf("encode submission slots: %w", err)
	}

	row := []interface{}{
		record.ID,
		record.Intent.String(),
		string(slotsJSON),
		record.SubmittedAt.Format(time.DateTime),
	}

	_, err = s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, baseIntent+"!A1", &sheets.ValueRange{
			Values: [][]interface{}{row},
		}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append submission to sheet %q: %w", baseIntent, err)
	}

	return nil
}

// ensureSheet creates the per-intent tab on first use. Appends never rewrite
// existing rows, so prior records survive concurrent writers.
func (s *sheetsClient) ensureSheet(ctx context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.knownSheets[title] {
		return nil
	}

	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			s.knownSheets[title] = true
			return nil
		}
	}

	_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet %q: %w", title, err)
	}

	s.knownSheets[title] = true
	return nil
}
