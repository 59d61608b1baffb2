// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

const activeBillKey = "active_bill_id"

// SQLiteStore implements storage.Store using SQLite.
// It remembers the last state it loaded or saved, so a save only writes the
// bills that changed.
type SQLiteStore struct {
	db *sql.DB

	mu    sync.Mutex
	saved map[string]savedBill // nil until the first load or save
}

// savedBill is a bill as it is currently stored.
type savedBill struct {
	position int
	bill     models.Bill
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are a per-connection setting, so pass it in the DSN.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot makes the stored collection equal to snap in one transaction.
// Bills absent from snap are deleted (their rows cascade), new or changed
// bills are rewritten, and bills that only moved get a new position.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saved == nil {
		current, err := s.loadSnapshot(ctx)
		if err != nil {
			return err
		}
		s.remember(current)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	keep := make(map[string]bool, len(snap.Bills))
	for _, bill := range snap.Bills {
		keep[bill.ID] = true
	}
	for id := range s.saved {
		if !keep[id] {
			if err := deleteBill(ctx, tx, id); err != nil {
				return err
			}
		}
	}

	for pos, bill := range snap.Bills {
		prev, ok := s.saved[bill.ID]
		switch {
		case !ok:
			err = insertBill(ctx, tx, pos, bill)
		case !prev.bill.Equal(bill):
			if err = deleteBill(ctx, tx, bill.ID); err == nil {
				err = insertBill(ctx, tx, pos, bill)
			}
		case prev.position != pos:
			_, err = tx.ExecContext(ctx, "UPDATE bills SET position = ? WHERE id = ?", pos, bill.ID)
			if err != nil {
				err = fmt.Errorf("failed to move bill %s: %w", bill.ID, err)
			}
		}
		if err != nil {
			return err
		}
	}

	if snap.ActiveBillID == "" {
		_, err = tx.ExecContext(ctx, "DELETE FROM app_state WHERE key = ?", activeBillKey)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO app_state (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			activeBillKey, snap.ActiveBillID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save active bill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.remember(snap)
	return nil
}

// remember records snap as the stored state.
func (s *SQLiteStore) remember(snap models.Snapshot) {
	s.saved = make(map[string]savedBill, len(snap.Bills))
	for pos, bill := range snap.Bills {
		s.saved[bill.ID] = savedBill{position: pos, bill: bill.Clone()}
	}
}

func deleteBill(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete bill %s: %w", id, err)
	}
	return nil
}

func insertBill(ctx context.Context, tx *sql.Tx, position int, bill models.Bill) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO bills (id, position, title, created_at, tax_rate, service_rate, discount, is_closed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, position, bill.Title, bill.CreatedAt.UnixNano(),
		bill.TaxRate, bill.ServiceRate, bill.Discount, boolToInt(bill.IsClosed),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill %s: %w", bill.ID, err)
	}

	// Insert participants
	for i, p := range bill.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO participants (bill_id, id, position, name, is_owner) VALUES (?, ?, ?, ?, ?)",
			bill.ID, p.ID, i, p.Name, boolToInt(p.IsOwner),
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	// Insert items and their assignments
	for i, item := range bill.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (bill_id, id, position, name, price, quantity) VALUES (?, ?, ?, ?, ?, ?)",
			bill.ID, item.ID, i, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for j, pid := range item.AssignedToParticipantIDs {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (bill_id, item_id, participant_id, position) VALUES (?, ?, ?, ?)",
				bill.ID, item.ID, pid, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	return nil
}

// LoadSnapshot reads every bill in collection order, including participants,
// items and assignments, plus the active bill pointer.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return snap, err
	}
	s.remember(snap)
	return snap.Clone(), nil
}

func (s *SQLiteStore) loadSnapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return snap, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	bills, index, err := loadBills(ctx, tx)
	if err != nil {
		return snap, err
	}
	if err := loadParticipants(ctx, tx, bills, index); err != nil {
		return snap, err
	}
	if err := loadItems(ctx, tx, bills, index); err != nil {
		return snap, err
	}
	if err := loadAssignments(ctx, tx, bills, index); err != nil {
		return snap, err
	}

	var active string
	err = tx.QueryRowContext(ctx, "SELECT value FROM app_state WHERE key = ?", activeBillKey).Scan(&active)
	if err != nil && err != sql.ErrNoRows {
		return snap, fmt.Errorf("failed to get active bill: %w", err)
	}

	snap.Bills = bills
	snap.ActiveBillID = active
	return snap, nil
}

func loadBills(ctx context.Context, tx *sql.Tx) ([]models.Bill, map[string]int, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, title, created_at, tax_rate, service_rate, discount, is_closed
		 FROM bills ORDER BY position`,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get bills: %w", err)
	}
	defer rows.Close()

	bills := []models.Bill{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			bill      models.Bill
			createdAt int64
			closed    int
		)
		if err := rows.Scan(&bill.ID, &bill.Title, &createdAt, &bill.TaxRate,
			&bill.ServiceRate, &bill.Discount, &closed); err != nil {
			return nil, nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bill.CreatedAt = time.Unix(0, createdAt).UTC()
		bill.IsClosed = closed != 0
		bill.Participants = []models.Participant{}
		bill.Items = []models.LineItem{}
		index[bill.ID] = len(bills)
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, index, nil
}

func loadParticipants(ctx context.Context, tx *sql.Tx, bills []models.Bill, index map[string]int) error {
	rows, err := tx.QueryContext(ctx,
		"SELECT bill_id, id, name, is_owner FROM participants ORDER BY bill_id, position",
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			billID string
			p      models.Participant
			owner  int
		)
		if err := rows.Scan(&billID, &p.ID, &p.Name, &owner); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		p.IsOwner = owner != 0
		if i, ok := index[billID]; ok {
			bills[i].Participants = append(bills[i].Participants, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}
	return nil
}

func loadItems(ctx context.Context, tx *sql.Tx, bills []models.Bill, index map[string]int) error {
	rows, err := tx.QueryContext(ctx,
		"SELECT bill_id, id, name, price, quantity FROM items ORDER BY bill_id, position",
	)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			billID string
			item   models.LineItem
		)
		if err := rows.Scan(&billID, &item.ID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		item.AssignedToParticipantIDs = []string{}
		if i, ok := index[billID]; ok {
			bills[i].Items = append(bills[i].Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}
	return nil
}

func loadAssignments(ctx context.Context, tx *sql.Tx, bills []models.Bill, index map[string]int) error {
	rows, err := tx.QueryContext(ctx,
		"SELECT bill_id, item_id, participant_id FROM item_assignments ORDER BY bill_id, item_id, position",
	)
	if err != nil {
		return fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var billID, itemID, participantID string
		if err := rows.Scan(&billID, &itemID, &participantID); err != nil {
			return fmt.Errorf("failed to scan assignment: %w", err)
		}
		i, ok := index[billID]
		if !ok {
			continue
		}
		if j := bills[i].ItemIndex(itemID); j >= 0 {
			item := &bills[i].Items[j]
			item.AssignedToParticipantIDs = append(item.AssignedToParticipantIDs, participantID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
