package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tieba/internal/model"
)

type UserRepository interface {
	// Create 用户名重复返回 ErrAlreadyExists；同一事务内写入默认通知设置
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// IDsByUsernames 用户名到 id 的映射，不存在的用户名被忽略
	IDsByUsernames(ctx context.Context, usernames []string) (map[string]string, error)
	// UpdateProfile 只写非 nil 字段；邮箱被他人占用返回 ErrAlreadyExists
	UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) (*model.User, error)
	// UpdatePassword 以旧哈希做 CAS，旧哈希已变化返回 ErrForbidden
	UpdatePassword(ctx context.Context, userID, oldHash, newHash string) error
}

// ProfileUpdate 资料的部分更新
type ProfileUpdate struct {
	Nickname *string
	Bio      *string
	Email    *string
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(u)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyExists
		}
		settings := model.DefaultNotificationSettings(u.ID)
		return tx.Select("*").Create(&settings).Error
	})
	return wrapErr(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (r *userRepository) IDsByUsernames(ctx context.Context, usernames []string) (map[string]string, error) {
	res := make(map[string]string, len(usernames))
	if len(usernames) == 0 {
		return res, nil
	}
	var rows []model.User
	if err := r.db.WithContext(ctx).Select("id", "username").
		Where("username IN ?", usernames).Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	for _, u := range rows {
		res[u.Username] = u.ID
	}
	return res, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, &model.User{}, userID); err != nil {
			return err
		}
		updates := map[string]any{}
		if p.Nickname != nil {
			updates["nickname"] = *p.Nickname
		}
		if p.Bio != nil {
			updates["bio"] = *p.Bio
		}
		if p.Email != nil {
			if *p.Email != "" {
				var taken int64
				if err := tx.Model(&model.User{}).
					Where("email = ? AND id <> ?", *p.Email, userID).
					Count(&taken).Error; err != nil {
					return err
				}
				if taken > 0 {
					return ErrAlreadyExists
				}
			}
			updates["email"] = *p.Email
		}
		if len(updates) > 0 {
			if err := tx.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", userID).First(&u).Error
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, oldHash, newHash string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND password = ?", userID, oldHash).
		Update("password", newHash)
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrForbidden
	}
	return nil
}
