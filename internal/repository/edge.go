package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tieba/internal/model"
)

// EdgeKind 关系边种类
type EdgeKind string

const (
	EdgeFollow          EdgeKind = "follow"           // 用户 -> 用户
	EdgeBoardMembership EdgeKind = "board-membership" // 贴吧 -> 用户
	EdgeBoardFollow     EdgeKind = "board-follow"     // 用户 -> 贴吧
	EdgePostLike        EdgeKind = "post-like"        // 帖子 -> 点赞用户
	EdgeCommentLike     EdgeKind = "comment-like"     // 评论 -> 点赞用户
	EdgePostCollection  EdgeKind = "post-collection"  // 帖子 -> 收藏用户
)

// Edge 一条关系边，(Kind, SourceID, TargetID) 全局唯一
type Edge struct {
	ID        string    `json:"id"`
	Kind      EdgeKind  `json:"kind"`
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	CreatedAt time.Time `json:"created_at"`
}

// counterDelta 边增删时联动的一个计数
type counterDelta struct {
	owner  func() any
	column string
	// ownerOf 解析计数所属记录的 id
	ownerOf func(tx *gorm.DB, src, tgt string) (string, error)
}

type edgeSpec struct {
	model     func() any
	sourceCol string
	targetCol string
	source    func() any
	target    func() any
	newRow    func(id, src, tgt string, at time.Time) any
	deltas    []counterDelta
	// beforeRemove 删除前的额外校验，可为空
	beforeRemove func(tx *gorm.DB, src, tgt string) error
}

func userModel() any    { return &model.User{} }
func boardModel() any   { return &model.Board{} }
func postModel() any    { return &model.Post{} }
func commentModel() any { return &model.Comment{} }

func bySource(_ *gorm.DB, src, _ string) (string, error) { return src, nil }
func byTarget(_ *gorm.DB, _, tgt string) (string, error) { return tgt, nil }

// authorOfSource 源是帖子/评论时，取其作者（软删的也算）
func authorOfSource(m func() any) func(*gorm.DB, string, string) (string, error) {
	return func(tx *gorm.DB, src, _ string) (string, error) {
		var ids []string
		if err := tx.Model(m()).Where("id = ?", src).Pluck("author_id", &ids).Error; err != nil {
			return "", err
		}
		if len(ids) == 0 {
			return "", ErrNotFound
		}
		return ids[0], nil
	}
}

var edgeSpecs = map[EdgeKind]edgeSpec{
	EdgeFollow: {
		model:     func() any { return &model.Follow{} },
		sourceCol: "follower_id", targetCol: "followee_id",
		source: userModel, target: userModel,
		newRow: func(id, src, tgt string, at time.Time) any {
			return &model.Follow{ID: id, FollowerID: src, FolloweeID: tgt, CreatedAt: at}
		},
		deltas: []counterDelta{
			{userModel, "following_count", bySource},
			{userModel, "followers_count", byTarget},
		},
	},
	EdgeBoardMembership: {
		model:     func() any { return &model.BoardMember{} },
		sourceCol: "board_id", targetCol: "user_id",
		source: boardModel, target: userModel,
		newRow: func(id, src, tgt string, at time.Time) any {
			return &model.BoardMember{ID: id, BoardID: src, UserID: tgt, Role: model.RoleMember, Level: 1, JoinedAt: at}
		},
		deltas: []counterDelta{
			{boardModel, "members_count", bySource},
		},
		beforeRemove: func(tx *gorm.DB, boardID, userID string) error {
			role, err := roleTx(tx, boardID, userID)
			if err != nil {
				return err
			}
			if role == model.RoleOwner {
				return ErrForbidden
			}
			return nil
		},
	},
	EdgeBoardFollow: {
		model:     func() any { return &model.BoardFollow{} },
		sourceCol: "user_id", targetCol: "board_id",
		source: userModel, target: boardModel,
		newRow: func(id, src, tgt string, at time.Time) any {
			return &model.BoardFollow{ID: id, UserID: src, BoardID: tgt, CreatedAt: at}
		},
		deltas: []counterDelta{
			{boardModel, "followers_count", byTarget},
		},
	},
	EdgePostLike: {
		model:     func() any { return &model.PostLike{} },
		sourceCol: "post_id", targetCol: "user_id",
		source: postModel, target: userModel,
		newRow: func(id, src, tgt string, at time.Time) any {
			return &model.PostLike{ID: id, PostID: src, UserID: tgt, CreatedAt: at}
		},
		deltas: []counterDelta{
			{postModel, "likes_count", bySource},
			{userModel, "likes_count", authorOfSource(postModel)},
		},
	},
	EdgeCommentLike: {
		model:     func() any { return &model.CommentLike{} },
		sourceCol: "comment_id", targetCol: "user_id",
		source: commentModel, target: userModel,
		newRow: func(id, src, tgt string, at time.Time) any {
			return &model.CommentLike{ID: id, CommentID: src, UserID: tgt, CreatedAt: at}
		},
		deltas: []counterDelta{
			{commentModel, "likes_count", bySource},
			{userModel, "likes_count", authorOfSource(commentModel)},
		},
	},
	EdgePostCollection: {
		model:     func() any { return &model.PostCollection{} },
		sourceCol: "post_id", targetCol: "user_id",
		source: postModel, target: userModel,
		newRow: func(id, src, tgt string, at time.Time) any {
			return &model.PostCollection{ID: id, PostID: src, UserID: tgt, CreatedAt: at}
		},
		deltas: []counterDelta{
			{postModel, "collections_count", bySource},
		},
	},
}

// EdgeRepository 关系账本：边的唯一写入口，计数与边在同一事务内变更
type EdgeRepository interface {
	AddEdge(ctx context.Context, kind EdgeKind, sourceID, targetID string) (*Edge, error)
	RemoveEdge(ctx context.Context, kind EdgeKind, sourceID, targetID string) error
	Exists(ctx context.Context, kind EdgeKind, sourceID, targetID string) (bool, error)
	// Sources 指向 targetID 的边的源，按创建时间倒序
	Sources(ctx context.Context, kind EdgeKind, targetID string, offset, limit int) ([]string, error)
	// Targets 从 sourceID 出发的边的目标，按创建时间倒序
	Targets(ctx context.Context, kind EdgeKind, sourceID string, offset, limit int) ([]string, error)
}

type edgeRepository struct {
	db *gorm.DB
}

func NewEdgeRepository(db *gorm.DB) EdgeRepository { return &edgeRepository{db: db} }

var errUnknownEdgeKind = errors.New("unknown edge kind")

func lookupEdge(kind EdgeKind) (edgeSpec, error) {
	spec, ok := edgeSpecs[kind]
	if !ok {
		return edgeSpec{}, errUnknownEdgeKind
	}
	return spec, nil
}

func (r *edgeRepository) AddEdge(ctx context.Context, kind EdgeKind, sourceID, targetID string) (*Edge, error) {
	spec, err := lookupEdge(kind)
	if err != nil {
		return nil, err
	}
	if kind == EdgeFollow && sourceID == targetID {
		return nil, ErrSelfReference
	}
	var edge *Edge
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		edge, err = addEdgeTx(tx, kind, spec, sourceID, targetID)
		return err
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return edge, nil
}

// addEdgeTx 校验两端存在 -> 插入（唯一索引兜底）-> 计数 +1
func addEdgeTx(tx *gorm.DB, kind EdgeKind, spec edgeSpec, src, tgt string) (*Edge, error) {
	if err := ensureLive(tx, spec.source(), src); err != nil {
		return nil, err
	}
	if err := ensureLive(tx, spec.target(), tgt); err != nil {
		return nil, err
	}

	edge := &Edge{ID: uuid.New().String(), Kind: kind, SourceID: src, TargetID: tgt, CreatedAt: time.Now()}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(spec.newRow(edge.ID, src, tgt, edge.CreatedAt))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyExists
	}
	if err := applyDeltas(tx, spec, src, tgt, 1); err != nil {
		return nil, err
	}
	return edge, nil
}

func (r *edgeRepository) RemoveEdge(ctx context.Context, kind EdgeKind, sourceID, targetID string) error {
	spec, err := lookupEdge(kind)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return removeEdgeTx(tx, spec, sourceID, targetID)
	})
	return wrapErr(err)
}

func removeEdgeTx(tx *gorm.DB, spec edgeSpec, src, tgt string) error {
	if spec.beforeRemove != nil {
		if err := spec.beforeRemove(tx, src, tgt); err != nil {
			return err
		}
	}
	res := tx.Where(spec.sourceCol+" = ? AND "+spec.targetCol+" = ?", src, tgt).Delete(spec.model())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return applyDeltas(tx, spec, src, tgt, -1)
}

func applyDeltas(tx *gorm.DB, spec edgeSpec, src, tgt string, d int64) error {
	for _, cd := range spec.deltas {
		id, err := cd.ownerOf(tx, src, tgt)
		if err != nil {
			return err
		}
		if err := delta(tx, cd.owner(), id, cd.column, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *edgeRepository) Exists(ctx context.Context, kind EdgeKind, sourceID, targetID string) (bool, error) {
	spec, err := lookupEdge(kind)
	if err != nil {
		return false, err
	}
	var cnt int64
	if err := r.db.WithContext(ctx).Model(spec.model()).
		Where(spec.sourceCol+" = ? AND "+spec.targetCol+" = ?", sourceID, targetID).
		Count(&cnt).Error; err != nil {
		return false, wrapErr(err)
	}
	return cnt > 0, nil
}

func (r *edgeRepository) Sources(ctx context.Context, kind EdgeKind, targetID string, offset, limit int) ([]string, error) {
	spec, err := lookupEdge(kind)
	if err != nil {
		return nil, err
	}
	var ids []string
	err = r.db.WithContext(ctx).Model(spec.model()).
		Where(spec.targetCol+" = ?", targetID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Pluck(spec.sourceCol, &ids).Error
	return ids, wrapErr(err)
}

func (r *edgeRepository) Targets(ctx context.Context, kind EdgeKind, sourceID string, offset, limit int) ([]string, error) {
	spec, err := lookupEdge(kind)
	if err != nil {
		return nil, err
	}
	var ids []string
	err = r.db.WithContext(ctx).Model(spec.model()).
		Where(spec.sourceCol+" = ?", sourceID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Pluck(spec.targetCol, &ids).Error
	return ids, wrapErr(err)
}
