package models

import "time"

type User struct {
	UserID    int64     `bson:"user_id" json:"user_id"`
	UserName  string    `bson:"user_name" json:"user_name"`
	UserEmail string    `bson:"user_email" json:"user_email"`
	Password  string    `bson:"password" json:"-"` // bcrypt hash
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
