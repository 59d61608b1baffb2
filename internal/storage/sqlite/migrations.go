package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Participant and item IDs are unique per bill, so child tables key on (bill_id, id).
// Position columns preserve the collection, participant, item and assignment order.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    tax_rate REAL NOT NULL,
    service_rate REAL NOT NULL,
    discount REAL NOT NULL DEFAULT 0,
    is_closed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS participants (
    bill_id TEXT NOT NULL,
    id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    is_owner INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (bill_id, id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS items (
    bill_id TEXT NOT NULL,
    id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    price REAL NOT NULL,
    quantity INTEGER NOT NULL,
    PRIMARY KEY (bill_id, id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_assignments (
    bill_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (bill_id, item_id, participant_id),
    FOREIGN KEY (bill_id, item_id) REFERENCES items(bill_id, id) ON DELETE CASCADE,
    FOREIGN KEY (bill_id, participant_id) REFERENCES participants(bill_id, id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS app_state (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_participants_bill_id ON participants(bill_id);
CREATE INDEX IF NOT EXISTS idx_items_bill_id ON items(bill_id);
CREATE INDEX IF NOT EXISTS idx_item_assignments_item ON item_assignments(bill_id, item_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
