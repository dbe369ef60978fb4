package db

// Schema for the messaging keyspace.
//
// dm_messages is partitioned by room key and clustered ascending by the
// snowflake id, so a conversation reads back in send order straight off
// disk. is_read lives on the row itself; unread counts are derived from it
// rather than kept in a separate counter table, which keeps the
// false -> true transition the single source of truth for read state.
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id text,
		name text,
		email text,
		password_hash text,
		created_at timestamp,
		PRIMARY KEY (id)
	)`,
	`CREATE TABLE IF NOT EXISTS users_by_email (
		email text,
		user_id text,
		PRIMARY KEY (email)
	)`,
	`CREATE TABLE IF NOT EXISTS dm_messages (
		room_key text,
		id bigint,
		sender_id text,
		receiver_id text,
		text text,
		created_at timestamp,
		is_read boolean,
		PRIMARY KEY (room_key, id)
	) WITH CLUSTERING ORDER BY (id ASC)`,
	`CREATE TABLE IF NOT EXISTS user_conversations (
		user_id text,
		other_user_id text,
		last_message text,
		last_updated timestamp,
		PRIMARY KEY (user_id, other_user_id)
	)`,
}

// EnsureSchema creates the messaging tables if they do not exist. Run by the
// schema script, not by the services themselves.
func (s *Session) EnsureSchema() error {
	for _, stmt := range Statements {
		if err := s.Query(stmt).Exec(); err != nil {
			return err
		}
	}
	return nil
}
