package middleware

// UserIDKey is the echo context key holding the authenticated user's id.
const UserIDKey = "userID"
