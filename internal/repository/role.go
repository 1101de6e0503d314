package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/tieba/internal/model"
)

// Action 需要角色校验的操作
type Action string

const (
	ActionPinPost        Action = "pin-post"
	ActionFeaturePost    Action = "feature-post"
	ActionModerateMember Action = "moderate-member"
	ActionDeletePost     Action = "delete-post"
	ActionManageBoard    Action = "manage-board"
	ActionDeleteBoard    Action = "delete-board"
)

var actionMinRole = map[Action]model.Role{
	ActionPinPost:        model.RoleModerator,
	ActionFeaturePost:    model.RoleModerator,
	ActionModerateMember: model.RoleModerator,
	ActionDeletePost:     model.RoleModerator,
	ActionManageBoard:    model.RoleOwner,
	ActionDeleteBoard:    model.RoleOwner,
}

// MinRole 操作所需的最低角色
func MinRole(a Action) (model.Role, bool) {
	r, ok := actionMinRole[a]
	return r, ok
}

// RoleRepository 贴吧内角色：查询、逐级升降、权限判断
type RoleRepository interface {
	RoleOf(ctx context.Context, boardID, userID string) (model.Role, error)
	// Promote 提升一级，封顶 Moderator；已到顶时不做修改
	Promote(ctx context.Context, boardID, actorID, targetID string) (model.Role, error)
	// Demote 降低一级，最低 Member；吧主不可降级
	Demote(ctx context.Context, boardID, actorID, targetID string) (model.Role, error)
	// Authorize 允许时返回 nil，否则 ErrForbidden
	Authorize(ctx context.Context, boardID, userID string, action Action) error
	// Kick 移出成员，只能移出角色低于自己的人；校验与删除在同一事务
	Kick(ctx context.Context, boardID, actorID, targetID string) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository { return &roleRepository{db: db} }

// roleTx 非成员返回 RoleNone
func roleTx(tx *gorm.DB, boardID, userID string) (model.Role, error) {
	var roles []model.Role
	if err := tx.Model(&model.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Limit(1).
		Pluck("role", &roles).Error; err != nil {
		return model.RoleNone, err
	}
	if len(roles) == 0 {
		return model.RoleNone, nil
	}
	return roles[0], nil
}

func (r *roleRepository) RoleOf(ctx context.Context, boardID, userID string) (model.Role, error) {
	tx := r.db.WithContext(ctx)
	if err := ensureRow(tx, &model.Board{}, boardID); err != nil {
		return model.RoleNone, wrapErr(err)
	}
	role, err := roleTx(tx, boardID, userID)
	return role, wrapErr(err)
}

func (r *roleRepository) Promote(ctx context.Context, boardID, actorID, targetID string) (model.Role, error) {
	return r.step(ctx, boardID, actorID, targetID, func(actor, cur model.Role) (model.Role, error) {
		if !actor.AtLeast(model.RoleModerator) {
			return cur, ErrForbidden
		}
		if cur >= model.RoleModerator {
			return cur, nil
		}
		return cur + 1, nil
	})
}

func (r *roleRepository) Demote(ctx context.Context, boardID, actorID, targetID string) (model.Role, error) {
	return r.step(ctx, boardID, actorID, targetID, func(actor, cur model.Role) (model.Role, error) {
		// 只能降级比自己低的人，吧主不在可降范围内
		if !actor.AtLeast(model.RoleModerator) || cur == model.RoleOwner || actor <= cur {
			return cur, ErrForbidden
		}
		if cur <= model.RoleMember {
			return cur, nil
		}
		return cur - 1, nil
	})
}

// step 读取双方角色，计算目标角色后做 compare-and-set。
// CAS 落空说明并发修改已生效，按最新角色返回，不再叠加一级。
func (r *roleRepository) step(ctx context.Context, boardID, actorID, targetID string,
	next func(actor, cur model.Role) (model.Role, error)) (model.Role, error) {
	var result model.Role
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, &model.Board{}, boardID); err != nil {
			return err
		}
		actor, err := roleTx(tx, boardID, actorID)
		if err != nil {
			return err
		}
		cur, err := roleTx(tx, boardID, targetID)
		if err != nil {
			return err
		}
		if cur == model.RoleNone {
			if !actor.AtLeast(model.RoleModerator) {
				return ErrForbidden
			}
			return ErrNotFound
		}
		want, err := next(actor, cur)
		if err != nil {
			return err
		}
		result = want
		if want == cur {
			return nil
		}
		res := tx.Model(&model.BoardMember{}).
			Where("board_id = ? AND user_id = ? AND role = ?", boardID, targetID, cur).
			UpdateColumn("role", want)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result, err = roleTx(tx, boardID, targetID)
			return err
		}
		return nil
	})
	if err != nil {
		return model.RoleNone, wrapErr(err)
	}
	return result, nil
}

func (r *roleRepository) Authorize(ctx context.Context, boardID, userID string, action Action) error {
	need, ok := MinRole(action)
	if !ok {
		return fmt.Errorf("%w: unknown action %q", ErrForbidden, action)
	}
	role, err := r.RoleOf(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if !role.AtLeast(need) {
		return ErrForbidden
	}
	return nil
}

func (r *roleRepository) Kick(ctx context.Context, boardID, actorID, targetID string) error {
	spec, err := lookupEdge(EdgeBoardMembership)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRow(tx, &model.Board{}, boardID); err != nil {
			return err
		}
		actor, err := roleTx(tx, boardID, actorID)
		if err != nil {
			return err
		}
		if !actor.AtLeast(actionMinRole[ActionModerateMember]) {
			return ErrForbidden
		}
		target, err := roleTx(tx, boardID, targetID)
		if err != nil {
			return err
		}
		if target == model.RoleNone {
			return ErrNotFound
		}
		if target >= actor {
			return ErrForbidden
		}
		// 带角色条件删除，校验之后被提升的目标不会被误删
		res := tx.Where("board_id = ? AND user_id = ? AND role = ?", boardID, targetID, target).
			Delete(&model.BoardMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrForbidden
		}
		return applyDeltas(tx, spec, boardID, targetID, -1)
	})
	return wrapErr(err)
}
