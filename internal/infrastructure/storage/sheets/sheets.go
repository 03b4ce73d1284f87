package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"tgsync/internal/domain/record"
	"tgsync/internal/domain/snapshot"
)

// API - используемая часть Google Sheets API.
type API interface {
	GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	ClearValues(ctx context.Context, spreadsheetID, rng string) error
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
	ListSheets(ctx context.Context, spreadsheetID string) ([]*gsheets.SheetProperties, error)
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []*gsheets.Request) error
}

// Store хранит таблицу на листе Google-таблицы. Снапшот - копия листа.
type Store struct {
	api           API
	spreadsheetID string
	sheet         string
}

// New подключается к Google Sheets по ключу сервисного аккаунта.
func New(ctx context.Context, spreadsheetID, sheet, credentialsFile string) (*Store, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithAPI(&serviceAPI{svc: svc}, spreadsheetID, sheet), nil
}

func NewWithAPI(api API, spreadsheetID, sheet string) *Store {
	return &Store{api: api, spreadsheetID: spreadsheetID, sheet: sheet}
}

func (s *Store) Source() string {
	return s.sheet
}

// sheetRange весь лист; имя в кавычках, апострофы удваиваются.
func (s *Store) sheetRange() string {
	return "'" + strings.ReplaceAll(s.sheet, "'", "''") + "'"
}

func (s *Store) ReadTable(ctx context.Context) (record.Table, error) {
	values, err := s.api.GetValues(ctx, s.spreadsheetID, s.sheetRange())
	if err != nil {
		return record.Table{}, fmt.Errorf("get values: %w", err)
	}
	if len(values) == 0 {
		return record.NewTable(), nil
	}

	header := toStrings(values[0])
	rows := make([][]string, 0, len(values)-1)
	for _, v := range values[1:] {
		rows = append(rows, toStrings(v))
	}
	return record.FromValues(header, rows), nil
}

func (s *Store) ReplaceTable(ctx context.Context, t record.Table) error {
	values := make([][]interface{}, 0, t.Len()+1)
	values = append(values, toCells(t.Columns))
	for _, row := range t.Values() {
		values = append(values, toCells(row))
	}

	if err := s.api.ClearValues(ctx, s.spreadsheetID, s.sheetRange()); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}
	if err := s.api.UpdateValues(ctx, s.spreadsheetID, s.sheetRange()+"!A1", values); err != nil {
		return fmt.Errorf("update values: %w", err)
	}
	return nil
}

func (s *Store) CreateSnapshot(ctx context.Context, name string) (bool, error) {
	props, err := s.api.ListSheets(ctx, s.spreadsheetID)
	if err != nil {
		return false, err
	}

	var src *gsheets.SheetProperties
	for _, p := range props {
		if p.Title == s.sheet {
			src = p
			break
		}
	}
	if src == nil {
		return false, nil
	}

	req := &gsheets.Request{
		DuplicateSheet: &gsheets.DuplicateSheetRequest{
			SourceSheetId:    src.SheetId,
			NewSheetName:     name,
			InsertSheetIndex: int64(len(props)),
			// sheetId первого листа - 0, без этого поле не уйдет в запросе
			ForceSendFields: []string{"SourceSheetId", "InsertSheetIndex"},
		},
	}
	if err := s.api.BatchUpdate(ctx, s.spreadsheetID, []*gsheets.Request{req}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ListSnapshots(ctx context.Context, prefix string) ([]snapshot.Info, error) {
	props, err := s.api.ListSheets(ctx, s.spreadsheetID)
	if err != nil {
		return nil, err
	}

	var out []snapshot.Info
	for _, p := range props {
		if strings.HasPrefix(p.Title, prefix) {
			out = append(out, snapshot.Info{Name: p.Title, ID: strconv.FormatInt(p.SheetId, 10)})
		}
	}
	return out, nil
}

func (s *Store) DeleteSnapshots(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	reqs := make([]*gsheets.Request, 0, len(ids))
	for _, id := range ids {
		sheetID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return fmt.Errorf("bad sheet id %q: %w", id, err)
		}
		reqs = append(reqs, &gsheets.Request{
			DeleteSheet: &gsheets.DeleteSheetRequest{
				SheetId:         sheetID,
				ForceSendFields: []string{"SheetId"},
			},
		})
	}
	return s.api.BatchUpdate(ctx, s.spreadsheetID, reqs)
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.api.ListSheets(ctx, s.spreadsheetID)
	return err
}

func (s *Store) Close() error {
	return nil
}

func toStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		out[i] = fmt.Sprint(c)
	}
	return out
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// serviceAPI реализация API поверх *sheets.Service
type serviceAPI struct {
	svc *gsheets.Service
}

func (a *serviceAPI) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a *serviceAPI) ClearValues(ctx context.Context, spreadsheetID, rng string) error {
	_, err := a.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (a *serviceAPI) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := a.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) ListSheets(ctx context.Context, spreadsheetID string) ([]*gsheets.SheetProperties, error) {
	resp, err := a.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([]*gsheets.SheetProperties, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			out = append(out, sh.Properties)
		}
	}
	return out, nil
}

func (a *serviceAPI) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*gsheets.Request) error {
	_, err := a.svc.Spreadsheets.BatchUpdate(spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).
		Do()
	return err
}
