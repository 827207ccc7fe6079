package mysql

// Partitioned tables are addressed by name at run time, so these statements
// carry a single %s for the table resolved by the router. Router targets come
// from static configuration, never from request input.

const insertAccommodationSQL = `
INSERT INTO %s
  (id, feed, title, country_code, bedroom_count, review_score, usd_rate,
   lat, lon, amenities, location_id, user_id, published, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP), CURRENT_TIMESTAMP)
`

const selectAccommodationCols = `
  id, feed, title, country_code, bedroom_count, review_score, usd_rate,
  lat, lon, amenities, location_id, user_id, published, created_at, updated_at`

const getAccommodationSQL = `
SELECT` + selectAccommodationCols + `
FROM %s
WHERE id = ? AND feed = ?
`

// feed is the partition key and is never updated; the row stays where the
// router first put it.
const updateAccommodationSQL = `
UPDATE %s SET
  title         = ?,
  country_code  = ?,
  bedroom_count = ?,
  review_score  = ?,
  usd_rate      = ?,
  lat           = ?,
  lon           = ?,
  amenities     = ?,
  location_id   = ?,
  published     = ?,
  updated_at    = CURRENT_TIMESTAMP
WHERE id = ? AND feed = ?
`

const deleteAccommodationSQL = `DELETE FROM %s WHERE id = ? AND feed = ?`

const insertLocalizedSQL = `
INSERT INTO %s (accommodation_id, language, description, policy)
VALUES (?, ?, ?, ?)
`

const existsLocalizedSQL = `
SELECT EXISTS(SELECT 1 FROM %s WHERE accommodation_id = ? AND language = ?)
`

const getLocalizedSQL = `
SELECT id, accommodation_id, language, description, policy
FROM %s
WHERE accommodation_id = ? AND language = ?
`

const listLocalizedSQL = `
SELECT id, accommodation_id, language, description, policy
FROM %s
WHERE accommodation_id = ?
`

const deleteLocalizedSQL = `DELETE FROM %s WHERE accommodation_id = ?`

const upsertLocationSQL = `
INSERT INTO locations
  (id, title, location_type, country_code, state_abbr, city, lat, lon, parent_id, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON DUPLICATE KEY UPDATE
  title         = VALUES(title),
  location_type = VALUES(location_type),
  country_code  = VALUES(country_code),
  state_abbr    = VALUES(state_abbr),
  city          = VALUES(city),
  lat           = VALUES(lat),
  lon           = VALUES(lon),
  parent_id     = VALUES(parent_id),
  updated_at    = CURRENT_TIMESTAMP
`

const selectLocationCols = `
  id, title, location_type, country_code, state_abbr, city, lat, lon, parent_id, created_at, updated_at`

const getLocationSQL = `
SELECT` + selectLocationCols + `
FROM locations
WHERE id = ?
`

const childrenOfSQL = `
SELECT` + selectLocationCols + `
FROM locations
WHERE parent_id = ?
ORDER BY title
`

const listByTypeSQL = `
SELECT` + selectLocationCols + `
FROM locations
WHERE location_type = ?
ORDER BY title
`

const insertUserSQL = `
INSERT INTO users (username, email, password_hash, is_active, is_staff, created_at)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
`

const selectUserCols = `
  id, username, email, password_hash, is_active, is_staff, created_at`

const ensureGroupSQL = `
INSERT INTO user_groups (name) VALUES (?)
ON DUPLICATE KEY UPDATE name = VALUES(name)
`

const addToGroupSQL = `
INSERT IGNORE INTO user_group_members (user_id, group_id)
SELECT ?, id FROM user_groups WHERE name = ?
`

const inGroupSQL = `
SELECT EXISTS(
  SELECT 1
  FROM user_group_members m
  JOIN user_groups g ON g.id = m.group_id
  WHERE m.user_id = ? AND g.name = ?
)
`

const insertImageSQL = `
INSERT INTO accommodation_images (accommodation_id, feed, file_name, uploaded_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
`

const listImagesSQL = `
SELECT id, accommodation_id, feed, file_name, uploaded_at
FROM accommodation_images
WHERE accommodation_id = ? AND feed = ?
ORDER BY uploaded_at, id
`

const deleteImagesSQL = `DELETE FROM accommodation_images WHERE accommodation_id = ? AND feed = ?`
