package mysql

const insertMessageSQL = `
INSERT INTO messages
  (message_uuid, recipient, sender, channel, message_type, client_ref, raw, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  client_ref = COALESCE(VALUES(client_ref), messages.client_ref),
  raw        = COALESCE(VALUES(raw), messages.raw)
`

// Vonage redelivers webhooks until it gets a 2xx, so the same
// (uuid, kind, status, timestamp) may arrive more than once. The unique key
// collapses those; we only refresh received_at.
const insertEventSQL = `
INSERT INTO message_events
  (message_uuid, kind, status, sender, recipient, channel, client_ref, event_ts, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, COALESCE(?, '1970-01-01 00:00:01'), ?)
ON DUPLICATE KEY UPDATE
  received_at = CURRENT_TIMESTAMP(3)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Oldest first, so a status list reads as the delivery timeline.
const listEventsSQL = `
SELECT
  id,
  message_uuid,
  kind,
  status,
  sender,
  recipient,
  channel,
  client_ref,
  event_ts,
  raw
FROM message_events
WHERE message_uuid = ?
ORDER BY event_ts ASC, id ASC
LIMIT ?
`
