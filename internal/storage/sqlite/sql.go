package sqlite

// Table names cannot be bound parameters; %s is always a name that passed
// validTable.

const createTableSQL = `
CREATE TABLE IF NOT EXISTS %s (
  hotel_id  INTEGER PRIMARY KEY,
  name      TEXT,
  name_fold TEXT
)`

const upsertHotelSQL = `
INSERT INTO %s (hotel_id, name, name_fold)
VALUES (?, ?, ?)
ON CONFLICT(hotel_id) DO UPDATE SET
  name      = excluded.name,
  name_fold = excluded.name_fold`

const dropTableSQL = `DROP TABLE IF EXISTS %s`

const tableExistsSQL = `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`

const countSQL = `SELECT count(*) FROM %s`

// SQLite's LIKE only folds ASCII, so names and patterns are lowercased in Go
// and matched against name_fold.
const matchSQL = `
SELECT hotel_id, name
FROM %s
WHERE name_fold LIKE ?
ORDER BY hotel_id`

const allSQL = `SELECT hotel_id, name FROM %s ORDER BY hotel_id`
