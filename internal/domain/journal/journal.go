// Package journal keeps private notes on the device. Entries never reach
// the shared tables.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"alianca-go/pkg/calendar"
	"github.com/google/uuid"
)

// StorageKey is the single key the entry list is stored under.
const StorageKey = "@alianca:journal_entries"

var (
	ErrEntryNotFound = errors.New("journal entry not found")
	ErrEmptyEntry    = errors.New("journal entry text is required")
)

type Entry struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Date      calendar.Date `json:"date"`
	Timestamp int64         `json:"timestamp"`
}

// KV is a local key-value store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

type Service struct {
	kv  KV
	loc *time.Location
	now func() time.Time
}

func NewService(kv KV, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{kv: kv, loc: loc, now: time.Now}
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode journal: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *Service) Add(ctx context.Context, text string) (*Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyEntry
	}
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := Entry{
		ID:        uuid.NewString(),
		Text:      text,
		Date:      calendar.Today(now, s.loc),
		Timestamp: now.UnixMilli(),
	}
	entries = append([]Entry{entry}, entries...)
	if err := s.save(ctx, entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Service) Update(ctx context.Context, id, text string) (*Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyEntry
	}
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Text = text
			if err := s.save(ctx, entries); err != nil {
				return nil, err
			}
			updated := entries[i]
			return &updated, nil
		}
	}
	return nil, ErrEntryNotFound
}

func (s *Service) Delete(ctx context.Context, id string) error {
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == id {
			entries = append(entries[:i], entries[i+1:]...)
			return s.save(ctx, entries)
		}
	}
	return ErrEntryNotFound
}

func (s *Service) save(ctx context.Context, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}
