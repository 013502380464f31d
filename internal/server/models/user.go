// Package models defines the persistent entities of the credential service.
// Struct tags cover both DynamoDB attribute names and the JSON shape exposed
// at the transport boundary; the password hash is never serialized outward.
package models

import "time"

// User is a registered account. Users are never physically deleted;
// deactivation flips IsActive instead.
type User struct {
	UserID            string     `dynamodbav:"user_id" json:"user_id"`
	Username          string     `dynamodbav:"username" json:"username"`
	PasswordHash      string     `dynamodbav:"password_hash" json:"-"`
	IsActive          bool       `dynamodbav:"is_active" json:"is_active"`
	CreatedAt         time.Time  `dynamodbav:"created_at" json:"created_at"`
	LastLoginAt       time.Time  `dynamodbav:"last_login_at" json:"last_login_at"`
	UsernameChangedAt *time.Time `dynamodbav:"username_changed_at,omitempty" json:"username_changed_at,omitempty"`
}
