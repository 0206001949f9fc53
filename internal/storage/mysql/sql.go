package mysql

// %s is always a table name that passed validTable.

const createTableSQL = `
CREATE TABLE IF NOT EXISTS %s (
  hotel_id BIGINT NOT NULL PRIMARY KEY,
  name     TEXT
) DEFAULT CHARSET = utf8mb4 COLLATE = utf8mb4_0900_ai_ci
`

const dropTableSQL = `DROP TABLE IF EXISTS %s`

const upsertPrefix = "INSERT INTO %s\n  (hotel_id, name)\nVALUES "

const upsertOnDup = " ON DUPLICATE KEY UPDATE\n  name = VALUES(name)\n"

const countSQL = `SELECT count(*) FROM %s`

// The _ci collation makes LIKE case-insensitive.
const matchSQL = `
SELECT hotel_id, name
FROM %s
WHERE name LIKE ?
ORDER BY hotel_id
`

const allSQL = `SELECT hotel_id, name FROM %s ORDER BY hotel_id`
