package model

// All 需要迁移的全部表
func All() []any {
	return []any{
		&User{},
		&Follow{},
		&Board{},
		&BoardMember{},
		&BoardFollow{},
		&Post{},
		&Comment{},
		&PostLike{},
		&CommentLike{},
		&PostCollection{},
		&MessageSession{},
		&Message{},
		&Notification{},
		&NotificationSettings{},
	}
}
