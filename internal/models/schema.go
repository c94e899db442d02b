package models

// Schema lists the relational models owned by PostgreSQL, in migration order.
func Schema() []any {
	return []any{
		&User{},
		&Follow{},
		&Comment{},
		&Reaction{},
		&Notification{},
	}
}
