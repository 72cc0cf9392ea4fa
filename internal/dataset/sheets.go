package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/avero-hq/avero/internal/common"
	"github.com/avero-hq/avero/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valuesGetter fetches the cell values of one range.
type valuesGetter interface {
	Get(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)
}

// SheetsSource reads each dataset from the spreadsheet tab of the same name.
type SheetsSource struct {
	values        valuesGetter
	spreadsheetID string
}

// NewSheetsSource authenticates against Google Sheets with the configured credentials.
func NewSheetsSource(ctx context.Context, cfg config.SheetsConfig) (*SheetsSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	srv, err := createSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsSource{
		values:        &apiValues{srv: srv},
		spreadsheetID: cfg.SpreadsheetID,
	}, nil
}

func createSheetsService(ctx context.Context, cfg config.SheetsConfig) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if cfg.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(cfg.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: cfg.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// Open implements Source.
func (s *SheetsSource) Open(ctx context.Context, name string) (RowReader, io.Closer, error) {
	readRange := "'" + strings.ReplaceAll(name, "'", "''") + "'"

	var values [][]any
	err := common.WithRetry(ctx, func() error {
		var err error
		values, err = s.values.Get(ctx, s.spreadsheetID, readRange)
		return classifySheetsError(err)
	}, common.RetryOptions{MaxAttempts: 3})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: no sheet named %q", ErrNotFound, name)
		}
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = cellString(cell)
		}
	}
	return newSliceReader(rows), nopCloser{}, nil
}

// classifySheetsError marks API errors as retryable or permanent.
func classifySheetsError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound,
			apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range"):
			return &common.RetryableError{Err: fmt.Errorf("%w: %v", ErrNotFound, err), Retryable: false}
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
		case apiErr.Code >= http.StatusInternalServerError:
			return &common.RetryableError{Err: err, Retryable: true}
		default:
			return &common.RetryableError{Err: err, Retryable: false}
		}
	}
	return err
}

// cellString renders an unformatted cell value without losing precision.
func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

type apiValues struct {
	srv *sheets.Service
}

func (a *apiValues) Get(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	resp, err := a.srv.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
