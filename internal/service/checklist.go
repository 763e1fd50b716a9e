// Package service provides the business logic layer for sets,
// checklists, imports, search, stats, and admin operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cardbinder/cardbinder-server/internal/checklist"
	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/errors"
	"github.com/cardbinder/cardbinder-server/internal/id"
	"github.com/cardbinder/cardbinder-server/internal/normalize"
	"github.com/cardbinder/cardbinder-server/internal/store"
)

// ChecklistService orchestrates checklist imports and card mutations.
type ChecklistService struct {
	store  *store.Store
	stats  *StatsService
	logger *slog.Logger

	// importing guards against two concurrent imports into the same set.
	// Imports are multi-chunk and not atomic, so interleaving two of
	// them would produce partial duplicates.
	mu        sync.Mutex
	importing map[string]struct{}
}

// NewChecklistService creates a new checklist service.
func NewChecklistService(store *store.Store, stats *StatsService, logger *slog.Logger) *ChecklistService {
	return &ChecklistService{
		store:     store,
		stats:     stats,
		logger:    logger,
		importing: make(map[string]struct{}),
	}
}

// ImportRequest is a pasted checklist plus batch-wide attributes.
type ImportRequest struct {
	Text string
	// Year applies to every imported line (multi-year sets).
	Year *int
	// Parallel is a batch-shared parallel label; imported rows are
	// created as that parallel.
	Parallel *string
	// SubsetName applies to every imported line.
	SubsetName string
	// Preview parses and reconciles without persisting anything.
	Preview bool
}

// ImportReport describes what an import did (or, for a preview, would
// do).
type ImportReport struct {
	TotalLines int                    `json:"total_lines"`
	LineErrors []checklist.ParsedCard `json:"line_errors,omitempty"`
	NewCount   int                    `json:"new_count"`
	Skipped    int                    `json:"skipped"`
	Inserted   int                    `json:"inserted"`
	Preview    bool                   `json:"preview"`
	// FailedChunk is the zero-based index of the chunk that failed, or
	// nil when every chunk committed. Chunks before it are persisted.
	FailedChunk *int                       `json:"failed_chunk,omitempty"`
	Duplicates  []checklist.CandidateMatch `json:"duplicates,omitempty"`
}

// ImportChecklist parses pasted checklist text, reconciles it against
// the set's existing cards, and persists the new rows in sequential
// chunks. Returns ErrImportInProgress if another import is already
// running for the set.
func (s *ChecklistService) ImportChecklist(ctx context.Context, setID string, req ImportRequest) (*ImportReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := s.store.Sets.Get(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	if set.IsRainbow() {
		return nil, errors.Validation("rainbow sets import parallels, not checklist lines")
	}

	if !req.Preview {
		if !s.beginImport(setID) {
			return nil, store.ErrImportInProgress
		}
		defer s.endImport(setID)
	}

	parsed := checklist.ParseChecklistText(req.Text, req.Year)

	report := &ImportReport{TotalLines: len(parsed), Preview: req.Preview}
	valid := make([]checklist.ParsedCard, 0, len(parsed))
	for _, line := range parsed {
		if line.Valid() {
			valid = append(valid, line)
			continue
		}
		report.LineErrors = append(report.LineErrors, line)
	}

	existing, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	rec := checklist.Reconcile(valid, existing, set, req.Parallel)
	report.NewCount = len(rec.New)
	report.Skipped = rec.Skipped
	report.Duplicates = rec.Matches

	if req.Preview || len(rec.New) == 0 {
		return report, nil
	}

	rows, err := s.buildCards(set, rec.New, req)
	if err != nil {
		return nil, err
	}

	for i, chunk := range checklist.Chunk(rows) {
		if err := s.store.InsertCards(ctx, chunk); err != nil {
			// Earlier chunks stay committed; report how far we got.
			report.Inserted = i * checklist.InsertChunkSize
			report.FailedChunk = &i
			s.stats.Invalidate(setID)
			return report, &store.ChunkError{Index: i, Err: err}
		}
	}
	report.Inserted = len(rows)

	s.stats.Invalidate(setID)
	s.logger.Info("checklist imported",
		"set_id", setID,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"line_errors", len(report.LineErrors),
	)

	return report, nil
}

// buildCards converts reconciled parse results to storable cards.
func (s *ChecklistService) buildCards(set *domain.Set, parsed []checklist.ParsedCard, req ImportRequest) ([]*domain.Card, error) {
	now := time.Now().UTC()

	rows := make([]*domain.Card, 0, len(parsed))
	for _, line := range parsed {
		cardID, err := id.Generate("card")
		if err != nil {
			return nil, fmt.Errorf("generate card ID: %w", err)
		}

		card := &domain.Card{
			ID:         cardID,
			SetID:      set.ID,
			CardNumber: line.CardNumber,
			PlayerName: line.PlayerName,
			Team:       line.Team,
			SubsetName: req.SubsetName,
			Status:     domain.StatusNeed,
			Year:       line.Year,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if req.Parallel != nil {
			card.Parallel = *req.Parallel
		}
		rows = append(rows, card)
	}
	return rows, nil
}

// RainbowImportReport describes a rainbow parallel import.
type RainbowImportReport struct {
	TotalLines int                        `json:"total_lines"`
	LineErrors []checklist.ParsedParallel `json:"line_errors,omitempty"`
	NewCount   int                        `json:"new_count"`
	Skipped    int                        `json:"skipped"`
	Inserted   int                        `json:"inserted"`
	Preview    bool                       `json:"preview"`
}

// ImportRainbow parses pasted parallel lines for a rainbow set and adds
// one card per new parallel, copying the card identity (number, player,
// team) from the set's existing base card. Parallels already present,
// matched case-insensitively by name, are skipped.
func (s *ChecklistService) ImportRainbow(ctx context.Context, setID, text string, preview bool) (*RainbowImportReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := s.store.Sets.Get(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	if !set.IsRainbow() {
		return nil, errors.Validation("parallel import only applies to rainbow sets")
	}

	if !preview {
		if !s.beginImport(setID) {
			return nil, store.ErrImportInProgress
		}
		defer s.endImport(setID)
	}

	existing, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	template := rainbowTemplate(existing)
	if template == nil {
		return nil, errors.Validation("add the card itself before importing its parallels")
	}

	parsed := checklist.ParseRainbowText(text)

	report := &RainbowImportReport{TotalLines: len(parsed), Preview: preview}
	valid := make([]checklist.ParsedParallel, 0, len(parsed))
	for _, line := range parsed {
		if line.Valid() {
			valid = append(valid, line)
			continue
		}
		report.LineErrors = append(report.LineErrors, line)
	}

	fresh, skipped := checklist.ReconcileParallels(valid, existing)
	report.NewCount = len(fresh)
	report.Skipped = skipped

	if preview || len(fresh) == 0 {
		return report, nil
	}

	now := time.Now().UTC()
	rows := make([]*domain.Card, 0, len(fresh))
	for _, p := range fresh {
		cardID, err := id.Generate("card")
		if err != nil {
			return nil, fmt.Errorf("generate card ID: %w", err)
		}
		rows = append(rows, &domain.Card{
			ID:               cardID,
			SetID:            setID,
			CardNumber:       template.CardNumber,
			PlayerName:       template.PlayerName,
			Team:             template.Team,
			Parallel:         p.Parallel,
			ParallelPrintRun: p.ParallelPrintRun,
			Status:           domain.StatusNeed,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	for i, chunk := range checklist.Chunk(rows) {
		if err := s.store.InsertCards(ctx, chunk); err != nil {
			report.Inserted = i * checklist.InsertChunkSize
			s.stats.Invalidate(setID)
			return report, &store.ChunkError{Index: i, Err: err}
		}
	}
	report.Inserted = len(rows)

	s.stats.Invalidate(setID)
	s.logger.Info("rainbow parallels imported",
		"set_id", setID,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
	)

	return report, nil
}

// rainbowTemplate picks the card whose identity new parallels copy:
// the base card if one exists, otherwise the first card.
func rainbowTemplate(cards []*domain.Card) *domain.Card {
	for _, card := range cards {
		if card.IsBase() {
			return card
		}
	}
	if len(cards) > 0 {
		return cards[0]
	}
	return nil
}

// NewCard are the caller-supplied fields for a manually added card.
type NewCard struct {
	CardNumber       string
	PlayerName       string
	Team             string
	SubsetName       string
	Parallel         string
	ParallelPrintRun string
	Year             *int
}

// AddCard adds a single card to a set, applying the same normalization
// and duplicate detection as a one-line import.
func (s *ChecklistService) AddCard(ctx context.Context, setID string, req NewCard) (*domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := s.store.Sets.Get(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	if req.CardNumber == "" {
		return nil, errors.Validation("card number is required")
	}
	if req.PlayerName == "" {
		return nil, errors.Validation("player name is required")
	}

	existing, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	cardID, err := id.Generate("card")
	if err != nil {
		return nil, fmt.Errorf("generate card ID: %w", err)
	}

	now := time.Now().UTC()
	card := &domain.Card{
		ID:               cardID,
		SetID:            setID,
		CardNumber:       req.CardNumber,
		PlayerName:       normalize.Accents(req.PlayerName),
		Team:             normalize.Accents(req.Team),
		SubsetName:       req.SubsetName,
		Parallel:         req.Parallel,
		ParallelPrintRun: req.ParallelPrintRun,
		Status:           domain.StatusNeed,
		Year:             req.Year,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	opts := set.KeyOptions(nil)
	key := card.Key(opts)
	for _, other := range existing {
		if other.Key(opts) == key {
			return nil, errors.AlreadyExistsf("card %s %s already exists in this set", card.CardNumber, card.PlayerName)
		}
	}

	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	s.stats.Invalidate(setID)
	return card, nil
}

// AddParallel adds a single parallel row to a rainbow set, copying the
// card identity from the existing base card.
func (s *ChecklistService) AddParallel(ctx context.Context, setID, parallel, printRun string) (*domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if parallel == "" {
		return nil, errors.Validation("parallel name is required")
	}

	set, err := s.store.Sets.Get(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	if !set.IsRainbow() {
		return nil, errors.Validation("parallels can only be added to rainbow sets")
	}

	existing, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	template := rainbowTemplate(existing)
	if template == nil {
		return nil, errors.Validation("add the card itself before adding parallels")
	}

	candidates := []checklist.ParsedParallel{{Parallel: parallel, ParallelPrintRun: printRun}}
	fresh, _ := checklist.ReconcileParallels(candidates, existing)
	if len(fresh) == 0 {
		return nil, errors.AlreadyExistsf("parallel %q already exists", parallel)
	}

	cardID, err := id.Generate("card")
	if err != nil {
		return nil, fmt.Errorf("generate card ID: %w", err)
	}

	now := time.Now().UTC()
	card := &domain.Card{
		ID:               cardID,
		SetID:            setID,
		CardNumber:       template.CardNumber,
		PlayerName:       template.PlayerName,
		Team:             template.Team,
		Parallel:         parallel,
		ParallelPrintRun: printRun,
		Status:           domain.StatusNeed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	s.stats.Invalidate(setID)
	return card, nil
}

// CardUpdate carries partial field updates for a card. Nil pointers
// leave the stored value untouched.
type CardUpdate struct {
	CardNumber       *string
	PlayerName       *string
	Team             *string
	SubsetName       *string
	Parallel         *string
	ParallelPrintRun *string
	SerialOwned      *string
	Status           *domain.CardStatus
	Year             *int
	DisplayOrder     *int
}

// EditCard applies a partial update to a card.
func (s *ChecklistService) EditCard(ctx context.Context, cardID string, update CardUpdate) (*domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}

	if update.CardNumber != nil {
		if *update.CardNumber == "" {
			return nil, errors.Validation("card number cannot be empty")
		}
		card.CardNumber = *update.CardNumber
	}
	if update.PlayerName != nil {
		if *update.PlayerName == "" {
			return nil, errors.Validation("player name cannot be empty")
		}
		card.PlayerName = normalize.Accents(*update.PlayerName)
	}
	if update.Team != nil {
		card.Team = normalize.Accents(*update.Team)
	}
	if update.SubsetName != nil {
		card.SubsetName = *update.SubsetName
	}
	if update.Parallel != nil {
		card.Parallel = *update.Parallel
	}
	if update.ParallelPrintRun != nil {
		card.ParallelPrintRun = *update.ParallelPrintRun
	}
	if update.SerialOwned != nil {
		card.SerialOwned = *update.SerialOwned
	}
	if update.Status != nil {
		if !domain.ValidStatus(*update.Status) {
			return nil, errors.Validationf("unknown status %q", *update.Status)
		}
		card.Status = *update.Status
	}
	if update.Year != nil {
		card.Year = update.Year
	}
	if update.DisplayOrder != nil {
		card.DisplayOrder = update.DisplayOrder
	}

	card.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}

	s.stats.Invalidate(card.SetID)
	return card, nil
}

// DeleteCards removes cards from a set.
func (s *ChecklistService) DeleteCards(ctx context.Context, setID string, cardIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(cardIDs) == 0 {
		return nil
	}

	if err := s.store.DeleteCards(ctx, cardIDs); err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}

	s.stats.Invalidate(setID)
	s.logger.Info("cards deleted", "set_id", setID, "count", len(cardIDs))
	return nil
}

// BulkStatusPreview matches pasted card numbers against the set and
// reports the transition plan without changing anything.
func (s *ChecklistService) BulkStatusPreview(ctx context.Context, setID, text string, target domain.CardStatus) (*checklist.StatusPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !domain.ValidStatus(target) {
		return nil, errors.Validationf("unknown status %q", target)
	}

	cards, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	matches := checklist.MatchCardNumbers(text, cards)
	plan := checklist.PlanStatusChange(matches, target)
	return &plan, nil
}

// BulkStatusApply recomputes the transition plan from the pasted text
// and applies it as one batched status update. Recomputing rather than
// trusting IDs from an earlier preview keeps a stale preview from
// updating cards that changed in between.
func (s *ChecklistService) BulkStatusApply(ctx context.Context, setID, text string, target domain.CardStatus) (*checklist.StatusPlan, error) {
	plan, err := s.BulkStatusPreview(ctx, setID, text, target)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateCardStatuses(ctx, plan.UpdateIDs, target)
	if err != nil {
		return nil, fmt.Errorf("update card statuses: %w", err)
	}

	s.stats.Invalidate(setID)
	s.logger.Info("bulk status applied",
		"set_id", setID,
		"target", target,
		"updated", updated,
		"unmatched", plan.UnmatchedCount,
	)

	return plan, nil
}

// ChangeYear moves every card currently at fromYear to toYear. Used to
// fix a mislabeled year group in a multi-year set.
func (s *ChecklistService) ChangeYear(ctx context.Context, setID string, fromYear *int, toYear int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	set, err := s.store.Sets.Get(ctx, setID)
	if err != nil {
		return 0, fmt.Errorf("get set: %w", err)
	}
	if !set.IsMultiYear() {
		return 0, errors.Validation("year groups only apply to multi-year sets")
	}

	cards, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return 0, fmt.Errorf("list cards: %w", err)
	}

	changed := 0
	for _, card := range cards {
		if !sameYear(card.Year, fromYear) {
			continue
		}
		year := toYear
		card.Year = &year
		card.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateCard(ctx, card); err != nil {
			return changed, fmt.Errorf("update card %s: %w", card.ID, err)
		}
		changed++
	}

	s.stats.Invalidate(setID)
	return changed, nil
}

func sameYear(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SetDisplayOrder records a manual ordering for a rainbow set's
// parallels: position in orderedIDs becomes each card's display order.
func (s *ChecklistService) SetDisplayOrder(ctx context.Context, setID string, orderedIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	set, err := s.store.Sets.Get(ctx, setID)
	if err != nil {
		return fmt.Errorf("get set: %w", err)
	}
	if !set.IsRainbow() {
		return errors.Validation("display order only applies to rainbow sets")
	}

	for i, cardID := range orderedIDs {
		card, err := s.store.GetCard(ctx, cardID)
		if err != nil {
			return fmt.Errorf("get card %s: %w", cardID, err)
		}
		if card.SetID != setID {
			return errors.Validationf("card %s does not belong to this set", cardID)
		}
		order := i
		card.DisplayOrder = &order
		card.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateCard(ctx, card); err != nil {
			return fmt.Errorf("update card %s: %w", cardID, err)
		}
	}

	return nil
}

// ExportCSV renders the set's checklist as CSV bytes in display order.
func (s *ChecklistService) ExportCSV(ctx context.Context, setID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := s.store.Sets.Get(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}

	cards, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	if set.IsRainbow() {
		checklist.SortRainbow(cards)
	} else {
		checklist.SortCards(cards)
	}

	return checklist.ExportCSV(cards)
}

// ListCards returns the set's cards filtered and grouped for display.
func (s *ChecklistService) ListCards(ctx context.Context, setID string, filter checklist.Filter) ([]checklist.YearGroup, []int, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	set, err := s.store.Sets.Get(ctx, setID)
	if err != nil {
		return nil, nil, fmt.Errorf("get set: %w", err)
	}

	cards, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return nil, nil, fmt.Errorf("list cards: %w", err)
	}

	years := checklist.Years(cards)
	filtered := checklist.FilterCards(cards, filter)
	groups := checklist.GroupCards(filtered, set, filter.Year != nil)
	return groups, years, nil
}

func (s *ChecklistService) beginImport(setID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.importing[setID]; busy {
		return false
	}
	s.importing[setID] = struct{}{}
	return true
}

func (s *ChecklistService) endImport(setID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.importing, setID)
}
