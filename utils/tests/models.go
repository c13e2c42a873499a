package tests

import (
	"time"

	"gorm.io/plsql"
)

// User model read through USERS_PKG.FIND_USERS_BY_NAME
type User struct {
	plsql.Record
	ID      int64
	Name    string
	Surname string
	Country string
}

// Admin inherits the procedure methods of User
type Admin struct {
	User
	Level int
}

// Post model read through POSTS_PKG.FIND_POSTS_BY_USER_ID
type Post struct {
	plsql.Record
	ID        int64
	UserID    int64
	Title     string
	CreatedAt time.Time
}

// Country ordinary table backed model
type Country struct {
	plsql.Record
	ID   int64
	Code string
	Name string
}
